package repository

import (
	"context"

	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository persists the follow relation between users.
type SubscriptionRepository interface {
	Create(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	Delete(ctx context.Context, userID, authorID uint) (bool, error)
	ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	CountAuthors(ctx context.Context, userID uint) (int64, error)
	ListFollowerIDs(ctx context.Context, authorID uint) ([]uint, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, userID, authorID uint) error {
	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&sub).Error; err != nil {
		switch {
		case isUniqueConstraintError(err):
			return models.NewConflictError("You are already subscribed to this user")
		case isCheckConstraintError(err):
			return models.NewValidationError("You cannot subscribe to yourself")
		case isForeignKeyError(err):
			return models.NewNotFoundError("User", authorID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Delete removes the pair and reports whether it existed.
func (r *subscriptionRepository) Delete(ctx context.Context, userID, authorID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListAuthors returns the users followed by userID, most recent subscription first.
// is_subscribed is always true from the follower's point of view.
func (r *subscriptionRepository) ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var authors []models.User
	if err := readDB(r.db).WithContext(ctx).
		Select("users.*, true AS is_subscribed").
		Joins("JOIN subscriptions s ON s.author_id = users.id").
		Where("s.user_id = ?", userID).
		Order("s.created_at DESC, s.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return authors, nil
}

func (r *subscriptionRepository) CountAuthors(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListFollowerIDs returns the ids of every user following authorID.
func (r *subscriptionRepository) ListFollowerIDs(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Subscription{}).
		Where("author_id = ?", authorID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
