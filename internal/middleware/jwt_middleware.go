package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"grocery/internal/models"
	"grocery/internal/services"
)

const userLocalsKey = "user"

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// present reports whether an Authorization header was sent at all.
func bearerToken(c *fiber.Ctx) (token string, present bool, err error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, errors.New("Authorization header format must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), true, nil
}

func authFailure(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Account is deactivated",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid or expired token",
		"error":   err.Error(),
	})
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, err := bearerToken(c)
		if !present {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}

		user, err := auth.Authenticate(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("authentication failed")
			return authFailure(c, err)
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// OptionalAuth lets guests through but rejects a token that is present and invalid.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, err := bearerToken(c)
		if !present {
			return c.Next()
		}
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		user, err := auth.Authenticate(token)
		if err != nil {
			return authFailure(c, err)
		}
		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// RequireRole allows only the given roles. It must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this resource",
		})
	}
}

// CurrentUser returns the authenticated user, or nil for guests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}
