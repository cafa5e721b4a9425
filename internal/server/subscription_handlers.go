package server

import (
	"github.com/gofiber/fiber/v2"
)

// recipesLimit reads the recipes_limit query parameter; 0 means no limit.
func recipesLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("recipes_limit", 0)
	if limit < 0 {
		return 0
	}
	return limit
}

// Subscribe handles POST /api/users/:id/subscribe
// @Summary Follow an author
// @Tags subscriptions
// @Security TokenAuth
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the preview"
// @Success 201 {object} models.Subscriber
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	subscriberID := viewerID(c)

	sub, err := s.subscriptionService.Follow(c.UserContext(), subscriberID, authorID, recipesLimit(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	s.publishNewSubscriber(c.UserContext(), subscriberID, authorID)
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe
// @Summary Unfollow an author
// @Tags subscriptions
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [delete]
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.subscriptionService.Unfollow(c.UserContext(), viewerID(c), authorID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSubscriptions handles GET /api/users/subscriptions
// @Summary Followed authors
// @Tags subscriptions
// @Security TokenAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} models.Page[models.Subscriber]
// @Router /users/subscriptions [get]
func (s *Server) ListSubscriptions(c *fiber.Ctx) error {
	p := parsePagination(c, s.config.PageSize)
	subs, count, err := s.subscriptionService.ListSubscriptions(c.UserContext(), viewerID(c), p.Limit, p.Offset, recipesLimit(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(buildPage(c, p, count, subs))
}
