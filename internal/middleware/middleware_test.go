package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/logging"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(token string) (string, error) {
	if sub, ok := s[token]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestJWTAuth(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Get("/me", JWTAuth(stubVerifier{"good": "u-1"}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": UserID(c)})
	})

	status, body := doJSON(t, app, fiber.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "u-1", body["user"])

	status, _ = doJSON(t, app, fiber.MethodGet, "/me", "", map[string]string{"Authorization": "bearer good"})
	assert.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, fiber.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid token", body["message"])

	status, _ = doJSON(t, app, fiber.MethodGet, "/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Get("/conflict", func(c *fiber.Ctx) error { return apperror.Conflict("Email already exists") })
	app.Get("/fields", func(c *fiber.Ctx) error {
		return apperror.ValidationFields("Invalid signup data", map[string]string{"email": "must be a valid email"})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return apperror.Internal("Login failed", errors.New("dial tcp: connection refused"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTooManyRequests, "slow down") })

	status, body := doJSON(t, app, fiber.MethodGet, "/conflict", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", body["message"])
	assert.NotContains(t, body, "error")

	status, body = doJSON(t, app, fiber.MethodGet, "/fields", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"email": "must be a valid email"}, body["fields"])

	status, body = doJSON(t, app, fiber.MethodGet, "/internal", "", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Login failed", body["message"])
	assert.Equal(t, "internal error", body["error"])

	status, body = doJSON(t, app, fiber.MethodGet, "/plain", "", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["message"])

	status, _ = doJSON(t, app, fiber.MethodGet, "/fiber", "", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Post("/login", LoginRateLimit(cache, 2), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	asha := `{"email":"Asha@example.com","password":"x"}`
	for i := 0; i < 2; i++ {
		status, _ := doJSON(t, app, fiber.MethodPost, "/login", asha, nil)
		require.Equal(t, fiber.StatusOK, status)
	}
	status, _ := doJSON(t, app, fiber.MethodPost, "/login", `{"email":"asha@example.com"}`, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)

	status, _ = doJSON(t, app, fiber.MethodPost, "/login", `{"email":"ravi@example.com"}`, nil)
	assert.Equal(t, fiber.StatusOK, status)

	mr.FastForward(61 * time.Second)
	status, _ = doJSON(t, app, fiber.MethodPost, "/login", asha, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}
