package wishlist

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/middleware"
	"github.com/freshcart/storefront/internal/notification"
)

// Handler exposes the signed-in user's wishlist over HTTP.
type Handler struct {
	lists  *Registry
	logger *slog.Logger
}

// NewHandler builds the wishlist handler.
func NewHandler(lists *Registry, logger *slog.Logger) *Handler {
	return &Handler{lists: lists, logger: logger}
}

type response struct {
	Wishlist []catalog.Product    `json:"wishlist"`
	Notices  []notification.Notice `json:"notices"`
}

// Get returns the persisted wishlist.
func (h *Handler) Get(c *fiber.Ctx) error {
	items, err := h.lists.For(middleware.UserID(c)).Load(c.UserContext())
	if errors.Is(err, ErrCorrupt) && h.logger != nil {
		h.logger.Warn("discarding unreadable wishlist", slog.String("user_id", middleware.UserID(c)), slog.Any("error", err))
	} else if err != nil && !errors.Is(err, ErrCorrupt) {
		return apperror.Internal("Wishlist unavailable", err)
	}
	return c.JSON(response{Wishlist: items, Notices: []notification.Notice{}})
}

// Add saves the posted product.
func (h *Handler) Add(c *fiber.Ctx) error {
	var p catalog.Product
	if err := c.BodyParser(&p); err != nil {
		return apperror.Validation("Invalid request body")
	}
	notes := notification.NewCollector()
	ctx := notification.WithNotifier(c.UserContext(), notes)
	items, err := h.lists.For(middleware.UserID(c)).Add(ctx, p)
	return h.respond(c, items, notes, err)
}

// Remove drops the product in the path.
func (h *Handler) Remove(c *fiber.Ctx) error {
	notes := notification.NewCollector()
	ctx := notification.WithNotifier(c.UserContext(), notes)
	items, err := h.lists.For(middleware.UserID(c)).Delete(ctx, c.Params("productId"))
	return h.respond(c, items, notes, err)
}

func (h *Handler) respond(c *fiber.Ctx, items []catalog.Product, notes *notification.Collector, err error) error {
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Internal("Wishlist update failed", err)
	}
	return c.JSON(response{Wishlist: items, Notices: notes.Notices()})
}
