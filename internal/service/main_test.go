package service

import (
	"testing"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/repository"
	"github.com/YURESSA/foodgram-st/internal/storage"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// services bundles every service over one in-memory database.
type services struct {
	db            *gorm.DB
	mediaDir      string
	users         *UserService
	subscriptions *SubscriptionService
	ingredients   *IngredientService
	recipes       *RecipeService
	collections   *CollectionService
}

func newServices(t *testing.T) *services {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	dir := t.TempDir()
	images := NewImageService(storage.NewLocalStore(dir, "/media"), &config.Config{ImageMaxDimension: 64})

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)

	users := NewUserService(userRepo, images)
	users.hashCost = bcrypt.MinCost

	return &services{
		db:            db,
		mediaDir:      dir,
		users:         users,
		subscriptions: NewSubscriptionService(subRepo, userRepo, recipeRepo),
		ingredients:   NewIngredientService(ingredientRepo),
		recipes:       NewRecipeService(recipeRepo, ingredientRepo, userRepo, images),
		collections:   NewCollectionService(collectionRepo, recipeRepo),
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, models.CodeValidation, appErr.Code)
	return appErr.Fields
}
