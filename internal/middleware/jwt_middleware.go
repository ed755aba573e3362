package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"storeapp/internal/models"
	"storeapp/internal/services"
)

// identityKey is the Locals key the session identity is stored under.
const identityKey = "identity"

// Identity returns the session identity stored by AuthRequired, or nil
// when the request is unauthenticated.
func Identity(c *fiber.Ctx) *models.SessionIdentity {
	ident, _ := c.Locals(identityKey).(*models.SessionIdentity)
	return ident
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return authHeader
}

// AuthRequired checks for a valid token and stores the decoded session
// identity in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "No token provided",
			})
		}

		ident, err := authService.ValidateToken(tokenString)
		if err != nil {
			logrus.Debugf("Token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
		}

		c.Locals(identityKey, ident)
		return c.Next()
	}
}

// OptionalAuth decodes a token when one is present but lets anonymous
// requests through. Public store listings use it to attach the caller's
// own ratings when known.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := bearerToken(c); tokenString != "" {
			if ident, err := authService.ValidateToken(tokenString); err == nil {
				c.Locals(identityKey, ident)
			}
		}
		return c.Next()
	}
}

// RequireAdmin gates a route to administrators. Must run after
// AuthRequired.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := Identity(c)
		if ident == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}
		if ident.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Admins only",
			})
		}
		return c.Next()
	}
}

// RequireStoreOwner gates a route to store owners. Must run after
// AuthRequired.
func RequireStoreOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := Identity(c)
		if ident == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}
		if ident.Role != models.RoleStoreOwner {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Store owners only",
			})
		}
		return c.Next()
	}
}
