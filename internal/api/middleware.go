package api

import (
	"log/slog"
	"strings"

	"github.com/dori/taskmate/internal/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityKey is the key used to store the caller identity in the Fiber context.
	IdentityKey = "identity"

	// TokenCookie carries the access token for browser clients.
	TokenCookie = "token"
)

// AuthMiddleware resolves the caller from a Bearer token, falling back to the
// token cookie, and rejects the request if neither is valid. A store failure
// while resolving is reported as 503, not as bad credentials.
func AuthMiddleware(resolver auth.Resolver, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(TokenCookie)
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			if !strings.HasPrefix(header, "Bearer ") {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "unauthorized",
					Message: "Invalid authorization header format. Use: Bearer <token>",
				})
			}
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authentication required",
			})
		}

		identity, err := resolver.Resolve(c.UserContext(), token)
		if err != nil && unavailable(err) {
			return storeUnavailable(c, log, err)
		}
		if err != nil || identity == nil || identity.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// Caller returns the identity stored by AuthMiddleware, or nil.
func Caller(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(IdentityKey).(*auth.Identity)
	return id
}

// callerID returns the caller's user id. It is empty outside AuthMiddleware,
// which the tracker rejects as unscoped.
func callerID(c *fiber.Ctx) string {
	if id := Caller(c); id != nil {
		return id.UserID
	}
	return ""
}
