package repository

import (
	"context"
	"errors"

	"github.com/YURESSA/foodgram-st/internal/cache"
	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetPasswordHash(ctx context.Context, id uint) (string, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateAvatar(ctx context.Context, id uint, avatar string) error
	List(ctx context.Context, viewerID uint, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	IsAdmin(ctx context.Context, id uint) (bool, error)
	SetAdmin(ctx context.Context, id uint, admin bool) error
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// withSubscribed selects users.* plus is_subscribed relative to viewerID.
func withSubscribed(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID == 0 {
		return db.Select("users.*, false AS is_subscribed")
	}
	return db.Select("users.*, EXISTS(SELECT 1 FROM subscriptions s WHERE s.author_id = users.id AND s.user_id = ?) AS is_subscribed", viewerID)
}

func (r *userRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.User, error) {
	fetch := func(ctx context.Context) (models.User, error) {
		var user models.User
		if err := withSubscribed(readDB(r.db).WithContext(ctx), viewerID).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user, models.NewNotFoundError("User", id)
			}
			return user, models.NewInternalError(err)
		}
		return user, nil
	}

	// is_subscribed depends on the viewer, so only anonymous reads are cached.
	var (
		user models.User
		err  error
	)
	if viewerID == 0 {
		user, err = cache.Load(ctx, cache.UserKey(id), cache.UserTTL, fetch)
	} else {
		user, err = fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetPasswordHash bypasses the cache, which never stores credentials.
func (r *userRepository) GetPasswordHash(ctx context.Context, id uint) (string, error) {
	var hashes []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("password", &hashes).Error; err != nil {
		return "", models.NewInternalError(err)
	}
	if len(hashes) == 0 {
		return "", models.NewNotFoundError("User", id)
	}
	return hashes[0], nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A user with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uint, avatar string) error {
	return r.updateColumn(ctx, id, "avatar", avatar)
}

func (r *userRepository) List(ctx context.Context, viewerID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := withSubscribed(readDB(r.db).WithContext(ctx), viewerID).
		Order("users.created_at DESC, users.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// IsAdmin reads the flag from the primary. Cached profiles never carry it.
func (r *userRepository) IsAdmin(ctx context.Context, id uint) (bool, error) {
	var flags []bool
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("is_admin", &flags).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	if len(flags) == 0 {
		return false, models.NewNotFoundError("User", id)
	}
	return flags[0], nil
}

func (r *userRepository) SetAdmin(ctx context.Context, id uint, admin bool) error {
	return r.updateColumn(ctx, id, "is_admin", admin)
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	var admins []models.User
	if err := r.db.WithContext(ctx).Where("is_admin = ?", true).Order("id").Find(&admins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return admins, nil
}
