package repository

import (
	"context"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionRepository_Toggle(t *testing.T) {
	for _, kind := range []models.CollectionKind{models.CollectionFavorites, models.CollectionShoppingCart} {
		t.Run(string(kind), func(t *testing.T) {
			db := testutil.NewSQLiteDB(t)
			repo := NewCollectionRepository(db)
			ctx := context.Background()

			chef := testutil.CreateUser(t, db, "chef")
			reader := testutil.CreateUser(t, db, "reader")
			recipe := testutil.CreateRecipe(t, db, chef, "Soup")

			require.NoError(t, repo.Add(ctx, kind, reader.ID, recipe.ID))

			contains, err := repo.Contains(ctx, kind, reader.ID, recipe.ID)
			require.NoError(t, err)
			assert.True(t, contains)

			err = repo.Add(ctx, kind, reader.ID, recipe.ID)
			assert.True(t, models.HasCode(err, models.CodeConflict), "double add must conflict")
			assert.Contains(t, err.Error(), kind.Label())

			removed, err := repo.Remove(ctx, kind, reader.ID, recipe.ID)
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = repo.Remove(ctx, kind, reader.ID, recipe.ID)
			require.NoError(t, err)
			assert.False(t, removed, "double remove must report a missing pair")

			err = repo.Add(ctx, kind, reader.ID, 999)
			assert.True(t, models.HasCode(err, models.CodeNotFound))
		})
	}
}

func TestCollectionRepository_CollectionsAreIndependent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCollectionRepository(db)
	ctx := context.Background()

	chef := testutil.CreateUser(t, db, "chef")
	recipe := testutil.CreateRecipe(t, db, chef, "Soup")

	require.NoError(t, repo.Add(ctx, models.CollectionFavorites, chef.ID, recipe.ID))

	inCart, err := repo.Contains(ctx, models.CollectionShoppingCart, chef.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, inCart)

	require.NoError(t, repo.Add(ctx, models.CollectionShoppingCart, chef.ID, recipe.ID))
}

func TestCollectionRepository_UnknownKind(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCollectionRepository(db)

	err := repo.Add(context.Background(), models.CollectionKind("wishlist"), 1, 1)
	assert.True(t, models.HasCode(err, models.CodeInternal))

	_, err = repo.Remove(context.Background(), models.CollectionKind("wishlist"), 1, 1)
	assert.True(t, models.HasCode(err, models.CodeInternal))

	_, err = repo.Contains(context.Background(), models.CollectionKind("wishlist"), 1, 1)
	assert.True(t, models.HasCode(err, models.CodeInternal))
}
