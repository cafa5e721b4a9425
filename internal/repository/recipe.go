package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. The collection flags only apply when
// ViewerID identifies an authenticated user.
type RecipeFilter struct {
	ViewerID      uint
	AuthorID      *uint
	FavoritedOnly bool
	InCartOnly    bool
}

// RecipeRepository defines persistence operations for recipes and their lines.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Recipe, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter RecipeFilter, limit, offset int) ([]*models.Recipe, int64, error)
	Update(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient) error
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]*models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	AggregateShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListItem, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// applyRecipeDetails selects the per-viewer collection flags and preloads the
// author and ingredient lines needed by the read model.
func (r *recipeRepository) applyRecipeDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID == 0 {
		db = db.Select("recipes.*, false AS is_favorited, false AS is_in_shopping_cart")
	} else {
		db = db.Select(
			"recipes.*, "+
				"EXISTS(SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?) AS is_favorited, "+
				"EXISTS(SELECT 1 FROM shopping_cart_items sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?) AS is_in_shopping_cart",
			viewerID, viewerID,
		)
	}
	return db.
		Preload("Author", func(tx *gorm.DB) *gorm.DB {
			return withSubscribed(tx, viewerID)
		}).
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := recipe.Ingredients
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			if isForeignKeyError(err) {
				return fmt.Errorf("%w: %v", errMissingAuthor, err)
			}
			return err
		}
		return insertLines(tx, recipe.ID, lines)
	})
	return translateRecipeWriteError(err)
}

func insertLines(tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(lines))
	for i, line := range lines {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// errMissingAuthor marks a recipe row rejected by the author foreign key,
// which only happens when a token outlives its user.
var errMissingAuthor = errors.New("recipe author does not exist")

func translateRecipeWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errMissingAuthor):
		return models.NewUnauthorizedError("Author account no longer exists")
	case isUniqueConstraintError(err):
		return models.NewFieldValidationError(map[string]string{"ingredients": "Ingredients must not repeat"})
	case isForeignKeyError(err):
		return models.NewFieldValidationError(map[string]string{"ingredients": "Unknown ingredient"})
	case isCheckConstraintError(err):
		return models.NewValidationError("Recipe values violate a constraint")
	}
	return models.NewInternalError(err)
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.applyRecipeDetails(r.db.WithContext(ctx), viewerID).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *recipeRepository) filtered(db *gorm.DB, filter RecipeFilter) *gorm.DB {
	if filter.AuthorID != nil {
		db = db.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.ViewerID != 0 && filter.FavoritedOnly {
		db = db.Where("EXISTS(SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)", filter.ViewerID)
	}
	if filter.ViewerID != 0 && filter.InCartOnly {
		db = db.Where("EXISTS(SELECT 1 FROM shopping_cart_items sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?)", filter.ViewerID)
	}
	return db
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, limit, offset int) ([]*models.Recipe, int64, error) {
	db := readDB(r.db).WithContext(ctx)

	var count int64
	if err := r.filtered(db.Model(&models.Recipe{}), filter).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var recipes []*models.Recipe
	if err := r.applyRecipeDetails(r.filtered(db, filter), filter.ViewerID).
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return recipes, count, nil
}

// Update saves the recipe fields and replaces its whole ingredient line set.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]any{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"image":        recipe.Image,
			"cooking_time": recipe.CookingTime,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Recipe", recipe.ID)
	}
	return translateRecipeWriteError(err)
}

// Delete removes the recipe together with its lines and collection memberships.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Recipe", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ListByAuthor returns the newest recipes of an author. A non-positive limit
// returns all of them.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]*models.Recipe, error) {
	q := readDB(r.db).WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []*models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// AggregateShoppingList sums the ingredient lines of every recipe in the
// user's cart, one row per (name, measurement unit).
func (r *recipeRepository) AggregateShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	items := []models.ShoppingListItem{}
	if err := r.db.WithContext(ctx).
		Table("shopping_cart_items AS sc").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS total_amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name ASC, i.measurement_unit ASC").
		Scan(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
