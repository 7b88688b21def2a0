package cart

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/middleware"
	"github.com/freshcart/storefront/internal/notification"
)

// Handler exposes the signed-in user's cart over HTTP.
type Handler struct {
	carts  *Registry
	logger *slog.Logger
}

// NewHandler builds the cart handler.
func NewHandler(carts *Registry, logger *slog.Logger) *Handler {
	return &Handler{carts: carts, logger: logger}
}

type response struct {
	Cart    Snapshot              `json:"cart"`
	Notices []notification.Notice `json:"notices"`
}

type quantityRequest struct {
	Count *int `json:"count"`
}

// Get returns the persisted cart, reloading it from storage.
func (h *Handler) Get(c *fiber.Ctx) error {
	notes := notification.NewCollector()
	store := h.carts.For(middleware.UserID(c))
	snap, err := store.Load(c.UserContext())
	if err := h.loadErr(c, err); err != nil {
		return err
	}
	return c.JSON(response{Cart: snap, Notices: notes.Notices()})
}

// Add puts one unit of the posted product in the cart.
func (h *Handler) Add(c *fiber.Ctx) error {
	var in ProductInput
	if err := c.BodyParser(&in); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return h.mutate(c, func(s *Store, notes *notification.Collector) (Snapshot, error) {
		return s.AddProduct(notification.WithNotifier(c.UserContext(), notes), in)
	})
}

// UpdateQuantity sets the count of the product in the path.
func (h *Handler) UpdateQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil || req.Count == nil {
		return apperror.Validation("count is required")
	}
	id := c.Params("productId")
	return h.mutate(c, func(s *Store, notes *notification.Collector) (Snapshot, error) {
		return s.UpdateProductQuantity(notification.WithNotifier(c.UserContext(), notes), id, *req.Count)
	})
}

// Remove deletes the product in the path.
func (h *Handler) Remove(c *fiber.Ctx) error {
	id := c.Params("productId")
	return h.mutate(c, func(s *Store, notes *notification.Collector) (Snapshot, error) {
		return s.DeleteProduct(notification.WithNotifier(c.UserContext(), notes), id)
	})
}

// Clear empties the cart.
func (h *Handler) Clear(c *fiber.Ctx) error {
	return h.mutate(c, func(s *Store, notes *notification.Collector) (Snapshot, error) {
		return s.EmptyCart(notification.WithNotifier(c.UserContext(), notes))
	})
}

func (h *Handler) mutate(c *fiber.Ctx, op func(*Store, *notification.Collector) (Snapshot, error)) error {
	notes := notification.NewCollector()
	store := h.carts.For(middleware.UserID(c))
	snap, err := op(store, notes)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Internal("Cart update failed", err)
	}
	return c.JSON(response{Cart: snap, Notices: notes.Notices()})
}

// loadErr tolerates a corrupt cart, which loads as empty, and wraps anything else.
func (h *Handler) loadErr(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCorrupt) {
		if h.logger != nil {
			h.logger.Warn("discarding unreadable cart",
				slog.String("user_id", middleware.UserID(c)),
				slog.Any("error", err),
			)
		}
		return nil
	}
	return apperror.Internal("Cart unavailable", err)
}
