package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/apperror"
)

const userIDLocal = "user_id"

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTAuth returns a middleware that validates bearer tokens and stores the
// subject as the request's user id.
func JWTAuth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return apperror.Auth("missing bearer token")
		}
		sub, err := tokens.Verify(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return apperror.Auth("invalid token")
		}
		c.Locals(userIDLocal, sub)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by JWTAuth, or "".
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(userIDLocal).(string)
	return uid
}
