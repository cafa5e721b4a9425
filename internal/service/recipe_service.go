package service

import (
	"context"
	"fmt"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/observability"
	"github.com/YURESSA/foodgram-st/internal/repository"
	"github.com/YURESSA/foodgram-st/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// IngredientAmount is one ingredient line of a recipe payload.
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1"`
}

// RecipeInput is the payload of recipe create and update. Image is a base64
// data URI and may be empty on update to keep the current image.
type RecipeInput struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Image       string             `json:"image"`
	Name        string             `json:"name" validate:"required,max=256"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"gte=1"`
}

// RecipeService owns recipe authoring and the shopping list.
type RecipeService struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
	userRepo       repository.UserRepository
	images         *ImageService
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	userRepo repository.UserRepository,
	images *ImageService,
) *RecipeService {
	return &RecipeService{recipeRepo: recipeRepo, ingredientRepo: ingredientRepo, userRepo: userRepo, images: images}
}

// validate collects per-field problems of in, including catalog lookups.
func (s *RecipeService) validate(ctx context.Context, in *RecipeInput, imageRequired bool) error {
	fields := validation.Fields(in)
	if fields == nil {
		fields = map[string]string{}
	}
	if imageRequired && in.Image == "" {
		fields["image"] = "This field is required"
	}

	if _, bad := fields["ingredients"]; !bad && len(in.Ingredients) > 0 {
		ids := make([]uint, 0, len(in.Ingredients))
		seen := make(map[uint]bool, len(in.Ingredients))
		for _, line := range in.Ingredients {
			if seen[line.ID] {
				fields["ingredients"] = "Ingredients must not repeat"
				break
			}
			seen[line.ID] = true
			ids = append(ids, line.ID)
		}

		if _, bad := fields["ingredients"]; !bad {
			existing, err := s.ingredientRepo.FindExistingIDs(ctx, ids)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if id != 0 && !existing[id] {
					fields["ingredients"] = fmt.Sprintf("Ingredient with id %d does not exist", id)
					break
				}
			}
		}
	}

	if len(fields) > 0 {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

func linesOf(in *RecipeInput) []models.RecipeIngredient {
	lines := make([]models.RecipeIngredient, len(in.Ingredients))
	for i, line := range in.Ingredients {
		lines[i] = models.RecipeIngredient{IngredientID: line.ID, Amount: line.Amount}
	}
	return lines
}

func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (recipe *models.Recipe, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "RecipeService", "Create")
	defer span.Finish(&err)
	span.AddAttributes(attribute.Int("recipe.ingredients", len(in.Ingredients)))

	if err := s.validate(ctx, &in, true); err != nil {
		return nil, err
	}

	imageURL, err := s.images.SaveDataURI(ctx, ImageKindRecipe, in.Name, in.Image)
	if err != nil {
		return nil, err
	}

	recipe = &models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       imageURL,
		CookingTime: in.CookingTime,
		Ingredients: linesOf(&in),
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		s.images.Delete(ctx, imageURL)
		return nil, err
	}
	observability.RecipesPublished.Inc()

	return s.recipeRepo.GetByID(ctx, recipe.ID, authorID)
}

// authored loads recipeID and checks that userID wrote it or is an admin.
func (s *RecipeService) authored(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID == userID {
		return recipe, nil
	}
	admin, err := s.userRepo.IsAdmin(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("User no longer exists")
		}
		return nil, err
	}
	if !admin {
		return nil, models.NewForbiddenError("Only the author can change this recipe")
	}
	return recipe, nil
}

// Update replaces the recipe fields and its whole ingredient line set.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, in RecipeInput) (recipe *models.Recipe, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "RecipeService", "Update")
	defer span.Finish(&err)
	span.AddAttributes(attribute.Int64("recipe.id", int64(recipeID)))

	recipe, err = s.authored(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}

	oldImage := ""
	if in.Image != "" {
		imageURL, err := s.images.SaveDataURI(ctx, ImageKindRecipe, in.Name, in.Image)
		if err != nil {
			return nil, err
		}
		oldImage = recipe.Image
		recipe.Image = imageURL
	}
	recipe.Name = in.Name
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime

	if err := s.recipeRepo.Update(ctx, recipe, linesOf(&in)); err != nil {
		if oldImage != "" {
			s.images.Delete(ctx, recipe.Image)
		}
		return nil, err
	}
	s.images.Delete(ctx, oldImage)

	return s.recipeRepo.GetByID(ctx, recipeID, userID)
}

func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) (err error) {
	span, ctx := observability.StartServiceSpan(ctx, "RecipeService", "Delete")
	defer span.Finish(&err)

	recipe, err := s.authored(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return err
	}
	s.images.Delete(ctx, recipe.Image)
	return nil
}

func (s *RecipeService) Get(ctx context.Context, recipeID, viewerID uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, recipeID, viewerID)
}

// Exists reports whether recipeID refers to a stored recipe.
func (s *RecipeService) Exists(ctx context.Context, recipeID uint) (bool, error) {
	return s.recipeRepo.Exists(ctx, recipeID)
}

func (s *RecipeService) List(ctx context.Context, filter repository.RecipeFilter, limit, offset int) ([]*models.Recipe, int64, error) {
	return s.recipeRepo.List(ctx, filter, limit, offset)
}

// ShoppingList aggregates the ingredient lines of every recipe in the user's cart.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uint) (items []models.ShoppingListItem, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "RecipeService", "ShoppingList")
	defer span.Finish(&err)

	items, err = s.recipeRepo.AggregateShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.Int("shopping_list.items", len(items)))
	return items, nil
}
