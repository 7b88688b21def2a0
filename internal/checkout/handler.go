package checkout

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/middleware"
	"github.com/freshcart/storefront/internal/notification"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type beginResponse struct {
	Session Session       `json:"session"`
	Options WidgetOptions `json:"options"`
}

type sessionResponse struct {
	Session Session               `json:"session"`
	Notices []notification.Notice `json:"notices"`
}

type completeRequest struct {
	PaymentID string `json:"paymentId"`
}

// Begin starts a checkout for the caller's cart and returns the widget options.
func (h *Handler) Begin(c *fiber.Ctx) error {
	var form Form
	if err := c.BodyParser(&form); err != nil {
		return apperror.Validation("Invalid request body")
	}
	sess, opts, err := h.svc.Begin(c.UserContext(), middleware.UserID(c), form)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(beginResponse{Session: sess, Options: opts})
}

// Complete is called with the payment id once the widget reports success.
func (h *Handler) Complete(c *fiber.Ctx) error {
	var req completeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	notes := notification.NewCollector()
	ctx := notification.WithNotifier(c.UserContext(), notes)
	sess, err := h.svc.Complete(ctx, middleware.UserID(c), c.Params("id"), req.PaymentID)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse{Session: sess, Notices: notes.Notices()})
}

func (h *Handler) Cancel(c *fiber.Ctx) error {
	notes := notification.NewCollector()
	ctx := notification.WithNotifier(c.UserContext(), notes)
	sess, err := h.svc.Cancel(ctx, middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse{Session: sess, Notices: notes.Notices()})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	sess, err := h.svc.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse{Session: sess, Notices: []notification.Notice{}})
}
