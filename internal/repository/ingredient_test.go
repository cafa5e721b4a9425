package repository

import (
	"context"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/cache"
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingredientNames(items []models.Ingredient) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func TestIngredientRepository_Search(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	testutil.CreateIngredient(t, db, "grape", "g")
	testutil.CreateIngredient(t, db, "apple", "pcs")
	testutil.CreateIngredient(t, db, "Apricot", "g")
	testutil.CreateIngredient(t, db, "100% juice", "ml")
	testutil.CreateIngredient(t, db, "Яблоко", "шт")
	testutil.CreateIngredient(t, db, "яйца", "шт")

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"Prefix match only", "ap", []string{"Apricot", "apple"}},
		{"Case insensitive", "AP", []string{"Apricot", "apple"}},
		{"Empty prefix returns all", "", []string{"100% juice", "Apricot", "apple", "grape", "Яблоко", "яйца"}},
		{"Cyrillic case folding", "яб", []string{"Яблоко"}},
		{"Cyrillic upper prefix", "Я", []string{"Яблоко", "яйца"}},
		{"Wildcards are literal", "%", []string{}},
		{"Percent inside prefix", "100%", []string{"100% juice"}},
		{"No match", "zz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.Search(ctx, tt.prefix)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ingredientNames(items))
		})
	}
}

func TestIngredientRepository_GetByID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	salt := testutil.CreateIngredient(t, db, "salt", "g")

	got, err := repo.GetByID(ctx, salt.ID)
	require.NoError(t, err)
	assert.Equal(t, "salt", got.Name)
	assert.Equal(t, "g", got.MeasurementUnit)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestIngredientRepository_FindExistingIDs(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewIngredientRepository(db)

	salt := testutil.CreateIngredient(t, db, "salt", "g")
	flour := testutil.CreateIngredient(t, db, "flour", "g")

	found, err := repo.FindExistingIDs(context.Background(), []uint{salt.ID, flour.ID, 999})
	require.NoError(t, err)
	assert.True(t, found[salt.ID])
	assert.True(t, found[flour.ID])
	assert.False(t, found[999])
}

func TestIngredientRepository_ImportBatchSkipsExisting(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	testutil.CreateIngredient(t, db, "salt", "g")

	created, err := repo.ImportBatch(ctx, []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
		{Name: "sugar", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	again, err := repo.ImportBatch(ctx, []models.Ingredient{{Name: "sugar", MeasurementUnit: "g"}})
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestIngredientRepository_SearchCacheInvalidatedByImport(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	cache.SetClient(client)
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewSQLiteDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	testutil.CreateIngredient(t, db, "salt", "g")

	items, err := repo.Search(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.True(t, mr.Exists(cache.IngredientSearchKey("s")))

	_, err = repo.ImportBatch(ctx, []models.Ingredient{{Name: "sugar", MeasurementUnit: "g"}})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.IngredientSearchKey("s")))

	items, err = repo.Search(ctx, "S")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"salt", "sugar"}, ingredientNames(items))
}
