package middleware

import "github.com/gofiber/fiber/v2"

// Noop is a minimal middleware that simply calls the next handler.
// Useful as a placeholder when a middleware is disabled by configuration.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
