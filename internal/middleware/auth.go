package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gym-management-api/internal/auth"
)

// Locals keys set by Protected.
const (
	UserIDKey = "uid"
	RoleKey   = "role"
)

// Protected validates the Authorization bearer token and stashes the
// caller's id and role on the request.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no token"})
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "bad token"})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(RoleKey, claims.Role)
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(RoleKey).(string); role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		}
		return c.Next()
	}
}
