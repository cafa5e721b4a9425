package server

import (
	"time"

	"github.com/YURESSA/foodgram-st/internal/cache"
	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the body of POST /api/auth/token/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/token/login
// @Summary Obtain an auth token
// @Description Exchange email and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} object{auth_token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/token/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return mapServiceError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"auth_token": token})
}

// Logout handles POST /api/auth/token/logout
// @Summary Revoke the current token
// @Tags auth
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals(localClaims).(*jwt.RegisteredClaims)
	if claims != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := cache.RevokeToken(c.UserContext(), claims.ID, ttl); err != nil {
			return mapServiceError(c, models.NewInternalError(err))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
