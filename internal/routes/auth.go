package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/auth"
)

// RegisterAuthRoutes wires signup and login. replay may be nil.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter, replay fiber.Handler) {
	group := r.Group("/auth")
	if replay != nil {
		group.Post("/signup", replay, h.Signup)
	} else {
		group.Post("/signup", h.Signup)
	}
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}
