package server

import (
	"github.com/gofiber/fiber/v2"
)

// SearchIngredients handles GET /api/ingredients
// @Summary Search ingredients
// @Description Case-insensitive name prefix search; the list is not paginated
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /ingredients [get]
func (s *Server) SearchIngredients(c *fiber.Ctx) error {
	ingredients, err := s.ingredientService.Search(c.UserContext(), c.Query("name"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(ingredients)
}

// GetIngredient handles GET /api/ingredients/:id
// @Summary Ingredient details
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.ErrorResponse
// @Router /ingredients/{id} [get]
func (s *Server) GetIngredient(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ingredient, err := s.ingredientService.Get(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(ingredient)
}
