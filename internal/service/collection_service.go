package service

import (
	"context"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/observability"
	"github.com/YURESSA/foodgram-st/internal/repository"
)

// CollectionService toggles recipes in a user's favorites and shopping cart.
type CollectionService struct {
	collectionRepo repository.CollectionRepository
	recipeRepo     repository.RecipeRepository
}

func NewCollectionService(collectionRepo repository.CollectionRepository, recipeRepo repository.RecipeRepository) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo, recipeRepo: recipeRepo}
}

// Add puts recipeID into the collection and returns its minimal representation.
// Adding a recipe twice is a conflict.
func (s *CollectionService) Add(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) (summary *models.RecipeSummary, err error) {
	defer func() {
		observability.CollectionToggles.WithLabelValues(string(kind), "add", outcomeOf(err)).Inc()
	}()

	recipe, err := s.recipeRepo.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, err
	}

	contains, err := s.collectionRepo.Contains(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if contains {
		return nil, models.NewConflictError("Recipe is already in " + kind.Label())
	}
	if err := s.collectionRepo.Add(ctx, kind, userID, recipeID); err != nil {
		return nil, err
	}

	out := models.SummaryOf(recipe)
	return &out, nil
}

// Remove takes recipeID out of the collection. A recipe that is not in the
// collection is a validation error, an unknown recipe is not found.
func (s *CollectionService) Remove(ctx context.Context, kind models.CollectionKind, userID, recipeID uint) (err error) {
	defer func() {
		observability.CollectionToggles.WithLabelValues(string(kind), "remove", outcomeOf(err)).Inc()
	}()

	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Recipe", recipeID)
	}

	removed, err := s.collectionRepo.Remove(ctx, kind, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("Recipe is not in " + kind.Label())
	}
	return nil
}
