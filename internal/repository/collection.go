package repository

import (
	"context"
	"fmt"

	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionRepository stores favorites and shopping cart memberships. Both
// collections share the same (user, recipe) pair semantics.
type CollectionRepository interface {
	Add(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) error
	Remove(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) (bool, error)
	Contains(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) (bool, error)
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

// membership returns the row type of kind holding the (user, recipe) pair.
func membership(kind models.CollectionKind, userID, recipeID uint) (any, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown collection %q", kind)
	}
	if kind == models.CollectionShoppingCart {
		return &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}, nil
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}, nil
}

func (r *collectionRepository) Add(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) error {
	row, err := membership(kind, userID, recipeID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		switch {
		case isUniqueConstraintError(err):
			return models.NewConflictError("Recipe is already in " + kind.Label())
		case isForeignKeyError(err):
			return models.NewNotFoundError("Recipe", recipeID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Remove deletes the pair and reports whether it existed.
func (r *collectionRepository) Remove(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) (bool, error) {
	model, err := membership(kind, 0, 0)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *collectionRepository) Contains(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) (bool, error) {
	model, err := membership(kind, 0, 0)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
