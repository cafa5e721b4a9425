package server

import (
	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddToCollection returns the POST handler of a recipe collection toggle.
// @Summary Add a recipe to favorites or the shopping cart
// @Tags collections
// @Security TokenAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite [post]
// @Router /recipes/{id}/shopping_cart [post]
func (s *Server) AddToCollection(kind models.CollectionKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		summary, err := s.collectionService.Add(c.UserContext(), kind, viewerID(c), recipeID)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(summary)
	}
}

// RemoveFromCollection returns the DELETE handler of a recipe collection toggle.
// @Summary Remove a recipe from favorites or the shopping cart
// @Tags collections
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite [delete]
// @Router /recipes/{id}/shopping_cart [delete]
func (s *Server) RemoveFromCollection(kind models.CollectionKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		if err := s.collectionService.Remove(c.UserContext(), kind, viewerID(c), recipeID); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
