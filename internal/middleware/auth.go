package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/calcforge/calcdb/internal/config"
	"github.com/calcforge/calcdb/internal/services"
	"github.com/calcforge/calcdb/internal/types"
)

// AuthUser validates the bearer token or auth cookie and stores the caller's
// user id in context
func AuthUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies("jwt_token")
		}
		if token == "" {
			return types.Unauthorized("auth.token", "Authorization token not found")
		}

		userID, claims, err := services.ParseToken(token, cfg.JWTSecret)
		if err != nil {
			return types.Unauthorized("auth.token", "Invalid token: %v", err)
		}

		// Set user data in context
		c.Locals("userID", userID)
		c.Locals("username", claims.Username)

		return c.Next()
	}
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
