package service

import (
	"context"
	"strings"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientService_Import(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	testutil.CreateIngredient(t, s.db, "salt", "g")

	created, err := s.ingredients.Import(ctx, []models.Ingredient{
		{Name: " salt ", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "tbsp"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	found, err := s.ingredients.Search(ctx, "SU")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "g", found[0].MeasurementUnit)
	assert.Equal(t, "tbsp", found[1].MeasurementUnit)
}

func TestIngredientService_ImportRejectsBadItems(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		item models.Ingredient
	}{
		{"empty name", models.Ingredient{Name: " ", MeasurementUnit: "g"}},
		{"empty unit", models.Ingredient{Name: "salt"}},
		{"long name", models.Ingredient{Name: strings.Repeat("n", 129), MeasurementUnit: "g"}},
		{"long unit", models.Ingredient{Name: "salt", MeasurementUnit: strings.Repeat("u", 65)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ingredients.Import(ctx, []models.Ingredient{tt.item})
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestIngredientService_Get(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")

	got, err := s.ingredients.Get(ctx, salt.ID)
	require.NoError(t, err)
	assert.Equal(t, "salt", got.Name)

	_, err = s.ingredients.Get(ctx, salt.ID+100)
	assertCode(t, err, models.CodeNotFound)
}
