package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/cache"
	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ingredientImportBatchSize = 500

// IngredientRepository reads and imports the ingredient catalog.
type IngredientRepository interface {
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	FindExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	ImportBatch(ctx context.Context, items []models.Ingredient) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// Search returns ingredients whose name starts with prefix, case-insensitively.
// An empty prefix returns the whole catalog.
func (r *ingredientRepository) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	prefix = strings.TrimSpace(prefix)
	ingredients, err := cache.Load(ctx, cache.IngredientSearchKey(prefix), cache.IngredientTTL, func(ctx context.Context) ([]models.Ingredient, error) {
		found := []models.Ingredient{}
		q := readDB(r.db).WithContext(ctx).Order("name ASC, measurement_unit ASC")
		if prefix != "" {
			q = q.Where(`search_name LIKE ? ESCAPE '\'`, prefixPattern(prefix))
		}
		err := q.Find(&found).Error
		return found, err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	ingredient, err := cache.Load(ctx, cache.IngredientKey(id), cache.IngredientTTL, func(ctx context.Context) (models.Ingredient, error) {
		var found models.Ingredient
		err := readDB(r.db).WithContext(ctx).First(&found, id).Error
		return found, err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Ingredient", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &ingredient, nil
}

// FindExistingIDs reports which of ids exist in the catalog.
func (r *ingredientRepository) FindExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

// ImportBatch inserts items, skipping (name, measurement_unit) pairs that already
// exist, and returns how many rows were created.
func (r *ingredientRepository) ImportBatch(ctx context.Context, items []models.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&items, ingredientImportBatchSize)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateIngredients(ctx)
	}
	return res.RowsAffected, nil
}

func (r *ingredientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
