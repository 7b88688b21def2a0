package auth

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/identity"
)

// Handler exposes the signup and login endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Signup creates a credential and returns 201 with a token.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	session, err := h.svc.Signup(c.UserContext(), identity.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	if h.logger != nil {
		h.logger.Info("auth.signup completed",
			slog.String("user_id", session.UserID),
			slog.Int("status", http.StatusCreated),
		)
	}
	return c.Status(http.StatusCreated).JSON(tokenResponse{Message: "success", Token: session.Token})
}

// Login verifies credentials and returns 200 with a token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	session, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(tokenResponse{Message: "success", Token: session.Token})
}
