package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderCorrelationID is echoed on every response so portal clients and
// upstream proxies can stitch a request through the logs.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"

	// LocalCorrelationID is the Locals key the identifier is bound under.
	LocalCorrelationID = "correlation_id"
)

type correlationCtxKey struct{}

// CorrelationID tags each request with an identifier, honoring one the
// caller already supplied on either accepted header.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if id == "" {
			id = strings.TrimSpace(c.Get(headerRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationCtxKey{}, id))

		return c.Next()
	}
}

// GetCorrelationID returns the identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok && id != "" {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// CorrelationIDFromContext reads the identifier from a context that left
// the handler layer, e.g. inside services logging on ctx.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationCtxKey{}).(string)
	return id
}
