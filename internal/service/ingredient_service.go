package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/repository"
)

const (
	maxIngredientNameLen = 128
	maxIngredientUnitLen = 64
)

// IngredientService exposes the read-only catalog and its bulk import.
type IngredientService struct {
	repo repository.IngredientRepository
}

func NewIngredientService(repo repository.IngredientRepository) *IngredientService {
	return &IngredientService{repo: repo}
}

// Search returns catalog entries whose name starts with prefix.
func (s *IngredientService) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	return s.repo.Search(ctx, prefix)
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.repo.GetByID(ctx, id)
}

// Import adds items to the catalog with get-or-create semantics and reports
// how many entries were new.
func (s *IngredientService) Import(ctx context.Context, items []models.Ingredient) (int64, error) {
	seen := make(map[[2]string]struct{}, len(items))
	clean := make([]models.Ingredient, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		unit := strings.TrimSpace(item.MeasurementUnit)
		switch {
		case name == "" || unit == "":
			return 0, models.NewValidationError(fmt.Sprintf("item %d: name and measurement_unit are required", i))
		case utf8.RuneCountInString(name) > maxIngredientNameLen:
			return 0, models.NewValidationError(fmt.Sprintf("item %d: name exceeds %d characters", i, maxIngredientNameLen))
		case utf8.RuneCountInString(unit) > maxIngredientUnitLen:
			return 0, models.NewValidationError(fmt.Sprintf("item %d: measurement_unit exceeds %d characters", i, maxIngredientUnitLen))
		}
		key := [2]string{name, unit}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return s.repo.ImportBatch(ctx, clean)
}
