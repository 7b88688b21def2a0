package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/cart"
	"github.com/freshcart/storefront/internal/checkout"
	"github.com/freshcart/storefront/internal/identity"
	"github.com/freshcart/storefront/internal/middleware"
	"github.com/freshcart/storefront/internal/wishlist"
)

// RegisterProfileRoute exposes the caller's profile.
func RegisterProfileRoute(r fiber.Router, ids *identity.Service) {
	r.Get("/me", func(c *fiber.Ctx) error {
		profile, err := ids.Profile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(profile)
	})
}

func RegisterCartRoutes(r fiber.Router, h *cart.Handler) {
	group := r.Group("/cart")
	group.Get("/", h.Get)
	group.Post("/", h.Add)
	group.Delete("/", h.Clear)
	group.Patch("/:productId", h.UpdateQuantity)
	group.Delete("/:productId", h.Remove)
}

func RegisterWishlistRoutes(r fiber.Router, h *wishlist.Handler) {
	group := r.Group("/wishlist")
	group.Get("/", h.Get)
	group.Post("/", h.Add)
	group.Delete("/:productId", h.Remove)
}

func RegisterCheckoutRoutes(r fiber.Router, h *checkout.Handler) {
	group := r.Group("/checkout")
	group.Post("/", h.Begin)
	group.Get("/:id", h.Get)
	group.Post("/:id/complete", h.Complete)
	group.Post("/:id/cancel", h.Cancel)
}
