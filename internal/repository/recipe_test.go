package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db     *gorm.DB
	repo   RecipeRepository
	chef   *models.User
	reader *models.User
	flour  *models.Ingredient
	sugar  *models.Ingredient
	eggs   *models.Ingredient
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	db := testutil.NewSQLiteDB(t)
	return &recipeFixture{
		db:     db,
		repo:   NewRecipeRepository(db),
		chef:   testutil.CreateUser(t, db, "chef"),
		reader: testutil.CreateUser(t, db, "reader"),
		flour:  testutil.CreateIngredient(t, db, "flour", "g"),
		sugar:  testutil.CreateIngredient(t, db, "sugar", "g"),
		eggs:   testutil.CreateIngredient(t, db, "eggs", "pcs"),
	}
}

func TestRecipeRepository_CreateAndGet(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe := &models.Recipe{
		AuthorID:    f.chef.ID,
		Name:        "Pancakes",
		Image:       "/media/recipes/pancakes.webp",
		Text:        "Mix and fry",
		CookingTime: 15,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: f.flour.ID, Amount: 200},
			{IngredientID: f.eggs.ID, Amount: 2},
		},
	}
	require.NoError(t, f.repo.Create(ctx, recipe))
	require.NotZero(t, recipe.ID)

	got, err := f.repo.GetByID(ctx, recipe.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, "chef", got.Author.Username)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "flour", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, got.Ingredients[0].Amount)
	assert.Equal(t, "eggs", got.Ingredients[1].Ingredient.Name)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)

	_, err = f.repo.GetByID(ctx, 999, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_CreateRejectsDuplicateLines(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe := &models.Recipe{
		AuthorID:    f.chef.ID,
		Name:        "Broken",
		Image:       "/media/recipes/broken.webp",
		Text:        "x",
		CookingTime: 5,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: f.flour.ID, Amount: 1},
			{IngredientID: f.flour.ID, Amount: 2},
		},
	}
	err := f.repo.Create(ctx, recipe)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "transaction must roll back the recipe row")
}

func TestRecipeRepository_CreateForeignKeyErrors(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		authorID uint
		lineID   uint
		code     string
		field    string
	}{
		{"unknown ingredient", f.chef.ID, f.eggs.ID + 100, models.CodeValidation, "ingredients"},
		{"author no longer exists", f.chef.ID + 100, f.flour.ID, models.CodeUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.repo.Create(ctx, &models.Recipe{
				AuthorID:    tt.authorID,
				Name:        "Orphan",
				Image:       "/media/recipes/orphan.webp",
				Text:        "x",
				CookingTime: 5,
				Ingredients: []models.RecipeIngredient{{IngredientID: tt.lineID, Amount: 1}},
			})
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			if tt.field != "" {
				assert.Contains(t, appErr.Fields, tt.field)
			} else {
				assert.Empty(t, appErr.Fields)
			}
		})
	}
}

func TestRecipeRepository_ViewerFlags(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe := testutil.CreateRecipe(t, f.db, f.chef, "Cake", testutil.Line{Ingredient: f.flour, Amount: 100})
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, f.db.Create(&models.Subscription{UserID: f.reader.ID, AuthorID: f.chef.ID}).Error)

	got, err := f.repo.GetByID(ctx, recipe.ID, f.reader.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)
	assert.True(t, got.Author.IsSubscribed)

	anon, err := f.repo.GetByID(ctx, recipe.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.Author.IsSubscribed)
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	soup := testutil.CreateRecipe(t, f.db, f.chef, "Soup")
	pie := testutil.CreateRecipe(t, f.db, f.chef, "Pie")
	toast := testutil.CreateRecipe(t, f.db, f.reader, "Toast")

	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: soup.ID}).Error)
	require.NoError(t, f.db.Create(&models.ShoppingCartItem{UserID: f.reader.ID, RecipeID: pie.ID}).Error)

	chefID := f.chef.ID
	tests := []struct {
		name   string
		filter RecipeFilter
		want   []uint
	}{
		{"All newest first", RecipeFilter{}, []uint{toast.ID, pie.ID, soup.ID}},
		{"By author", RecipeFilter{AuthorID: &chefID}, []uint{pie.ID, soup.ID}},
		{"Favorited", RecipeFilter{ViewerID: f.reader.ID, FavoritedOnly: true}, []uint{soup.ID}},
		{"In cart", RecipeFilter{ViewerID: f.reader.ID, InCartOnly: true}, []uint{pie.ID}},
		{"Both flags", RecipeFilter{ViewerID: f.reader.ID, FavoritedOnly: true, InCartOnly: true}, []uint{}},
		{"Anonymous flags pass through", RecipeFilter{FavoritedOnly: true, InCartOnly: true}, []uint{toast.ID, pie.ID, soup.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, count, err := f.repo.List(ctx, tt.filter, 10, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), count)
			ids := make([]uint, 0, len(recipes))
			for _, r := range recipes {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("Pagination keeps total count", func(t *testing.T) {
		recipes, count, err := f.repo.List(ctx, RecipeFilter{}, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		require.Len(t, recipes, 1)
		assert.Equal(t, pie.ID, recipes[0].ID)
	})
}

func TestRecipeRepository_UpdateReplacesLines(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe := testutil.CreateRecipe(t, f.db, f.chef, "Bread",
		testutil.Line{Ingredient: f.flour, Amount: 500},
		testutil.Line{Ingredient: f.sugar, Amount: 10},
		testutil.Line{Ingredient: f.eggs, Amount: 1},
	)

	recipe.Name = "Sweet bread"
	recipe.CookingTime = 60
	err := f.repo.Update(ctx, recipe, []models.RecipeIngredient{{IngredientID: f.sugar.ID, Amount: 50}})
	require.NoError(t, err)

	got, err := f.repo.GetByID(ctx, recipe.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Sweet bread", got.Name)
	assert.Equal(t, 60, got.CookingTime)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, f.sugar.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, 50, got.Ingredients[0].Amount)

	missing := &models.Recipe{ID: 999, Name: "x", Text: "x", Image: "x", CookingTime: 1}
	err = f.repo.Update(ctx, missing, nil)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_DeleteRemovesDependents(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	recipe := testutil.CreateRecipe(t, f.db, f.chef, "Stew", testutil.Line{Ingredient: f.flour, Amount: 5})
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, f.db.Create(&models.ShoppingCartItem{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)

	require.NoError(t, f.repo.Delete(ctx, recipe.ID))

	for _, model := range []any{&models.Recipe{}, &models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left behind", model)
	}

	err := f.repo.Delete(ctx, recipe.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecipeRepository_AuthorQueries(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	first := testutil.CreateRecipe(t, f.db, f.chef, "First")
	second := testutil.CreateRecipe(t, f.db, f.chef, "Second")
	third := testutil.CreateRecipe(t, f.db, f.chef, "Third")

	limited, err := f.repo.ListByAuthor(ctx, f.chef.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, third.ID, limited[0].ID)
	assert.Equal(t, second.ID, limited[1].ID)

	all, err := f.repo.ListByAuthor(ctx, f.chef.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[2].ID)

	counts, err := f.repo.CountByAuthors(ctx, []uint{f.chef.ID, f.reader.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[f.chef.ID])
	assert.Zero(t, counts[f.reader.ID])

	exists, err := f.repo.Exists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = f.repo.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecipeRepository_AggregateShoppingList(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	a := testutil.CreateRecipe(t, f.db, f.chef, "A",
		testutil.Line{Ingredient: f.flour, Amount: 2},
		testutil.Line{Ingredient: f.eggs, Amount: 1},
	)
	b := testutil.CreateRecipe(t, f.db, f.chef, "B",
		testutil.Line{Ingredient: f.flour, Amount: 3},
	)
	other := testutil.CreateRecipe(t, f.db, f.chef, "Other",
		testutil.Line{Ingredient: f.sugar, Amount: 100},
	)

	for _, r := range []*models.Recipe{b, a} {
		require.NoError(t, f.db.Create(&models.ShoppingCartItem{UserID: f.reader.ID, RecipeID: r.ID}).Error)
	}
	require.NoError(t, f.db.Create(&models.ShoppingCartItem{UserID: f.chef.ID, RecipeID: other.ID}).Error)

	items, err := f.repo.AggregateShoppingList(ctx, f.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{
		{Name: "eggs", MeasurementUnit: "pcs", TotalAmount: 1},
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 5},
	}, items)

	empty, err := f.repo.AggregateShoppingList(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecipeRepository_AggregateShoppingList_QueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS total_amount ` +
			`FROM shopping_cart_items AS sc ` +
			`JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id ` +
			`JOIN ingredients i ON i.id = ri.ingredient_id ` +
			`WHERE sc.user_id = $1 ` +
			`GROUP BY i.name, i.measurement_unit ` +
			`ORDER BY i.name ASC, i.measurement_unit ASC`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"name", "measurement_unit", "total_amount"}).
			AddRow("flour", "g", 5))

	items, err := repo.AggregateShoppingList(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{{Name: "flour", MeasurementUnit: "g", TotalAmount: 5}}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
