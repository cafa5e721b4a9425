package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	require.NoError(t, db.Create(&models.Subscription{UserID: bob.ID, AuthorID: alice.ID}).Error)

	tests := []struct {
		name           string
		viewerID       uint
		wantSubscribed bool
	}{
		{"Anonymous", 0, false},
		{"Follower", bob.ID, true},
		{"Self", alice.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.GetByID(ctx, alice.ID, tt.viewerID)
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, tt.wantSubscribed, user.IsSubscribed)
		})
	}

	t.Run("Not Found", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999, 0)
		assert.Nil(t, user)
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestUserRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT users.*, EXISTS(SELECT 1 FROM subscriptions s WHERE s.author_id = users.id AND s.user_id = $1) AS is_subscribed FROM "users" WHERE "users"."id" = $2`)).
		WithArgs(7, 1, 1).
		WillReturnError(errors.New("connection timeout"))

	user, err := repo.GetByID(context.Background(), 1, 7)
	assert.Nil(t, user)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "new@example.com", Username: "newuser", FirstName: "N", LastName: "U", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	t.Run("Duplicate email", func(t *testing.T) {
		dup := &models.User{Email: "new@example.com", Username: "other", FirstName: "O", LastName: "U", Password: "hash"}
		err := repo.Create(ctx, dup)
		assert.True(t, models.HasCode(err, models.CodeConflict))
	})

	t.Run("Duplicate username", func(t *testing.T) {
		dup := &models.User{Email: "other@example.com", Username: "newuser", FirstName: "O", LastName: "U", Password: "hash"}
		err := repo.Create(ctx, dup)
		assert.True(t, models.HasCode(err, models.CodeConflict))
	})
}

func TestUserRepository_Create_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	err := repo.Create(context.Background(), &models.User{Email: "a@example.com", Username: "a"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")

	found, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, alice.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "ghost@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, alice.ID, byName.ID)

	hash, err := repo.GetPasswordHash(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "not-a-real-hash", hash)

	_, err = repo.GetPasswordHash(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_Updates(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")

	require.NoError(t, repo.UpdatePassword(ctx, alice.ID, "new-hash"))
	hash, err := repo.GetPasswordHash(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", hash)

	require.NoError(t, repo.UpdateAvatar(ctx, alice.ID, "/media/avatars/a.webp"))
	user, err := repo.GetByID(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "/media/avatars/a.webp", user.Avatar)

	require.NoError(t, repo.UpdateAvatar(ctx, alice.ID, ""))
	user, err = repo.GetByID(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, user.Avatar)

	err = repo.UpdateAvatar(ctx, 999, "x")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := testutil.CreateUser(t, db, "first")
	second := testutil.CreateUser(t, db, "second")
	third := testutil.CreateUser(t, db, "third")
	require.NoError(t, db.Create(&models.Subscription{UserID: first.ID, AuthorID: third.ID}).Error)

	users, err := repo.List(ctx, first.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, third.ID, users[0].ID)
	assert.True(t, users[0].IsSubscribed)
	assert.Equal(t, second.ID, users[1].ID)
	assert.False(t, users[1].IsSubscribed)

	rest, err := repo.List(ctx, 0, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, first.ID, rest[0].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestUserRepository_SelectShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT users.*, false AS is_subscribed FROM "users" ORDER BY users.created_at DESC, users.id DESC LIMIT $1`)).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "is_subscribed"}).AddRow(1, "alice", false))

	users, err := repo.List(context.Background(), 0, 6, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AdminFlag(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	admin, err := repo.IsAdmin(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, admin)

	require.NoError(t, repo.SetAdmin(ctx, alice.ID, true))
	admin, err = repo.IsAdmin(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, admin)

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "alice", admins[0].Username)

	_, err = repo.IsAdmin(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.True(t, models.HasCode(repo.SetAdmin(ctx, 999, true), models.CodeNotFound))
}
