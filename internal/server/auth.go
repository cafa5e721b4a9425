package server

import (
	"context"
	"log/slog"

	"github.com/YURESSA/foodgram-st/internal/cache"
	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID = "userID"
	localClaims = "claims"
)

// authenticate resolves the request's token to a user. A nil error with a
// zero id means no token was presented.
func (s *Server) authenticate(c *fiber.Ctx, allowQuery bool) (uint, *jwt.RegisteredClaims, error) {
	token := middleware.ExtractToken(c, allowQuery)
	if token == "" {
		return 0, nil, nil
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return 0, nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	userID, err := middleware.UserID(claims)
	if err != nil {
		return 0, nil, models.NewUnauthorizedError("Invalid subject claim")
	}

	revoked, err := cache.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		// Revocation lookups fail open.
		middleware.Logger.WarnContext(c.UserContext(), "token revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return 0, nil, models.NewUnauthorizedError("Token has been revoked")
	}
	return userID, claims, nil
}

func setUser(c *fiber.Ctx, userID uint, claims *jwt.RegisteredClaims) {
	c.Locals(localUserID, userID)
	c.Locals(localClaims, claims)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, userID))
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, claims, err := s.authenticate(c, websocket.IsWebSocketUpgrade(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication credentials were not provided"))
		}
		setUser(c, userID, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the viewer when a token is presented. An invalid
// token is still rejected so clients notice expired sessions.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, claims, err := s.authenticate(c, false)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if userID != 0 {
			setUser(c, userID, claims)
		}
		return c.Next()
	}
}

// viewerID is the authenticated user's id or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(localUserID).(uint); ok {
		return id
	}
	return 0
}
