package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header used to propagate request IDs across services.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where the request ID is stored in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID tags every request with an ID so upload decisions can be traced
// end to end in the logs. An incoming X-Request-ID is trusted and reused;
// otherwise a fresh UUID is minted. The ID is stored in context locals and
// echoed back on the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
