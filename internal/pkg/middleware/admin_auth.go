package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/amirulizwan/KedaiKit/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
)

// AdminAuthMiddleware guards the operator API with a shared secret header.
// An unset ADMIN_SECRET locks the admin surface entirely rather than leaving
// it open.
func AdminAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := strings.TrimSpace(env.GetEnv("ADMIN_SECRET", ""))
		if secret == "" {
			log.Print("admin middleware: ADMIN_SECRET not configured, rejecting request")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Admin API tidak dikonfigurasi",
			})
		}

		given := strings.TrimSpace(c.Get("x-admin-secret"))
		if subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Secret tidak sah",
			})
		}

		return c.Next()
	}
}
