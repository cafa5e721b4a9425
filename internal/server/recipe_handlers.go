package server

import (
	"strconv"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/observability"
	"github.com/YURESSA/foodgram-st/internal/repository"
	"github.com/YURESSA/foodgram-st/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ShortLinkResponse is the body of GET /api/recipes/:id/get-link.
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func queryFlag(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true":
		return true
	}
	return false
}

func recipeViews(recipes []*models.Recipe) []models.RecipeView {
	views := make([]models.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, models.ViewOf(r))
	}
	return views
}

// ListRecipes handles GET /api/recipes
// @Summary List recipes
// @Description Newest first. Collection filters only apply to authenticated viewers.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param is_favorited query int false "Only favorites (1)"
// @Param is_in_shopping_cart query int false "Only recipes in the cart (1)"
// @Success 200 {object} models.Page[models.RecipeView]
// @Router /recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	filter := repository.RecipeFilter{
		ViewerID:      viewerID(c),
		FavoritedOnly: queryFlag(c, "is_favorited"),
		InCartOnly:    queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return mapServiceError(c, models.NewFieldValidationError(map[string]string{"author": "A valid integer is required"}))
		}
		id := uint(authorID)
		filter.AuthorID = &id
	}

	p := parsePagination(c, s.config.PageSize)
	recipes, count, err := s.recipeService.List(c.UserContext(), filter, p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(buildPage(c, p, count, recipeViews(recipes)))
}

// CreateRecipe handles POST /api/recipes
// @Summary Publish a recipe
// @Tags recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param request body service.RecipeInput true "Recipe"
// @Success 201 {object} models.RecipeView
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var in service.RecipeInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	recipe, err := s.recipeService.Create(c.UserContext(), viewerID(c), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	s.publishRecipe(c.UserContext(), recipe)
	return c.Status(fiber.StatusCreated).JSON(models.ViewOf(recipe))
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Recipe details
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeView
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	recipe, err := s.recipeService.Get(c.UserContext(), id, viewerID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.ViewOf(recipe))
}

// UpdateRecipe handles PUT and PATCH /api/recipes/:id
// @Summary Update a recipe
// @Description Replaces all fields and the ingredient list. The image may be omitted.
// @Tags recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body service.RecipeInput true "Recipe"
// @Success 200 {object} models.RecipeView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [patch]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.RecipeInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	recipe, err := s.recipeService.Update(c.UserContext(), viewerID(c), id, in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.ViewOf(recipe))
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Tags recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.recipeService.Delete(c.UserContext(), viewerID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) publicBaseURL(c *fiber.Ctx) string {
	if s.config.PublicBaseURL != "" {
		return s.config.PublicBaseURL
	}
	return c.BaseURL()
}

// GetShortLink handles GET /api/recipes/:id/get-link
// @Summary Short link to a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} ShortLinkResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/get-link [get]
func (s *Server) GetShortLink(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	exists, err := s.recipeService.Exists(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	if !exists {
		return mapServiceError(c, models.NewNotFoundError("Recipe", id))
	}
	return c.JSON(ShortLinkResponse{ShortLink: service.ShortLink(s.publicBaseURL(c), id)})
}

// FollowShortLink handles GET /s/:id by redirecting to the recipe page.
func (s *Server) FollowShortLink(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	exists, err := s.recipeService.Exists(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	if !exists {
		return mapServiceError(c, models.NewNotFoundError("Recipe", id))
	}
	return c.Redirect(service.RecipePageURL(s.config.FrontendURL, id), fiber.StatusFound)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
// @Summary Download the shopping list
// @Description Sums ingredient amounts over every recipe in the cart
// @Tags recipes
// @Security TokenAuth
// @Produce plain
// @Param format query string false "plain or numbered"
// @Success 200 {string} string "shopping list"
// @Failure 401 {object} models.ErrorResponse
// @Router /recipes/download_shopping_cart [get]
func (s *Server) DownloadShoppingCart(c *fiber.Ctx) error {
	items, err := s.recipeService.ShoppingList(c.UserContext(), viewerID(c))
	if err != nil {
		return mapServiceError(c, err)
	}

	style := service.ShoppingListStyle(c.Query("format"), s.config.ShoppingListFormat)
	observability.ShoppingListDownloads.WithLabelValues(style).Inc()

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Attachment(service.ShoppingListFilename)
	return c.Send(service.RenderShoppingList(items, style))
}
