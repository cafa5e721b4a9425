package server

import (
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisteredUser is the response of a successful registration.
type RegisteredUser struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AvatarRequest is the body of PUT /api/users/me/avatar.
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.Page[models.UserProfile]
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, s.config.PageSize)
	users, count, err := s.userService.ListUsers(c.UserContext(), viewerID(c), p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, models.ProfileOf(&users[i]))
	}
	return c.JSON(buildPage(c, p, count, profiles))
}

// Register handles POST /api/users
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 201 {object} RegisteredUser
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(RegisteredUser{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GetMe handles GET /api/users/me
// @Summary Current user profile
// @Tags users
// @Security TokenAuth
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	id := viewerID(c)
	user, err := s.userService.GetUser(c.UserContext(), id, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.ProfileOf(user))
}

// GetUser handles GET /api/users/:id
// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(c.UserContext(), id, viewerID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(models.ProfileOf(user))
}

// SetPassword handles POST /api/users/set_password
// @Summary Change password
// @Tags users
// @Security TokenAuth
// @Accept json
// @Param request body service.SetPasswordInput true "Passwords"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /users/set_password [post]
func (s *Server) SetPassword(c *fiber.Ctx) error {
	var in service.SetPasswordInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	if err := s.userService.SetPassword(c.UserContext(), viewerID(c), in); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetAvatar handles PUT /api/users/me/avatar
// @Summary Upload avatar
// @Tags users
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param request body AvatarRequest true "Base64 data URI"
// @Success 200 {object} AvatarRequest
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/avatar [put]
func (s *Server) SetAvatar(c *fiber.Ctx) error {
	var req AvatarRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	url, err := s.userService.SetAvatar(c.UserContext(), viewerID(c), req.Avatar)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(AvatarRequest{Avatar: url})
}

// DeleteAvatar handles DELETE /api/users/me/avatar
// @Summary Remove avatar
// @Tags users
// @Security TokenAuth
// @Success 204
// @Router /users/me/avatar [delete]
func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	if err := s.userService.DeleteAvatar(c.UserContext(), viewerID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
