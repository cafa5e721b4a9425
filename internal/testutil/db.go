// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/database"
	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a private in-memory database with the full schema applied.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared&_foreign_keys=1"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// CreateUser inserts a user with a unique username derived from name.
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: strings.ToUpper(name[:1]) + name[1:],
		LastName:  "Tester",
		Password:  "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

// CreateIngredient inserts a catalog entry.
func CreateIngredient(t testing.TB, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ingredient
}

// Line is an (ingredient, amount) pair used by CreateRecipe.
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe authored by author with the given lines.
func CreateRecipe(t testing.TB, db *gorm.DB, author *models.User, name string, lines ...Line) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/" + name + ".webp",
		Text:        "Cook " + name,
		CookingTime: 10,
	}
	if err := db.Omit("Author", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	for _, line := range lines {
		ri := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		if err := db.Omit("Ingredient").Create(&ri).Error; err != nil {
			t.Fatalf("create recipe line: %v", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ri)
	}
	return recipe
}
