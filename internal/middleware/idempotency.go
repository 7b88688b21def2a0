package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "freshcart:idempotency:"
	pendingMarker        = "pending"
	idempotencyTimeout   = 2 * time.Second
)

var (
	errRequestInFlight = fiber.NewError(fiber.StatusConflict, "A request with this Idempotency-Key is already being processed")
	errReplayStore     = fiber.NewError(fiber.StatusServiceUnavailable, "Request could not be deduplicated, try again")
)

// replayedHeaders are the response headers kept with a recorded response.
var replayedHeaders = []string{fiber.HeaderContentType, fiber.HeaderLocation}

type recordedResponse struct {
	Status  int               `json:"status"`
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

// replayCache claims, records and releases idempotency keys in Redis.
type replayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// claim reserves key with SET NX. When another request already holds it the
// stored value is returned instead, either the pending marker or a recording.
func (r replayCache) claim(ctx context.Context, key string) (won bool, held string, err error) {
	won, err = r.client.SetNX(ctx, key, pendingMarker, r.ttl).Result()
	if err != nil || won {
		return won, "", err
	}
	held, err = r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Released between the two calls; the caller treats it as in flight.
		return false, pendingMarker, nil
	}
	return false, held, err
}

func (r replayCache) record(ctx context.Context, key string, resp recordedResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return r.client.Set(ctx, key, payload, r.ttl).Err()
}

func (r replayCache) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
	defer cancel()
	r.client.Del(ctx, key)
}

// Idempotency makes unsafe requests carrying an Idempotency-Key header run at
// most once per user and key within ttl. The first request claims the key;
// duplicates arriving while it runs get 409 and later ones get the recorded
// response. Requests without the header pass through. A failed handler
// releases the key so the client can retry.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	replays := replayCache{client: cache, ttl: ttl}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		clientKey := c.Get(idempotencyKeyHeader)
		if clientKey == "" {
			return c.Next()
		}
		key := idempotencyPrefix + UserID(c) + ":" + clientKey
		log := logger.With(slog.String("idempotency_key", clientKey))

		ctx, cancel := context.WithTimeout(c.UserContext(), idempotencyTimeout)
		won, held, err := replays.claim(ctx, key)
		cancel()
		if err != nil {
			log.Error("claim idempotency key", slog.Any("error", err))
			return errReplayStore
		}
		if !won {
			return replay(c, held, log)
		}

		if err := c.Next(); err != nil {
			replays.release(key)
			return err
		}

		resp := recordedResponse{
			Status:  c.Response().StatusCode(),
			Body:    append([]byte(nil), c.Response().Body()...),
			Headers: make(map[string]string, len(replayedHeaders)),
		}
		for _, h := range replayedHeaders {
			if v := c.GetRespHeader(h); v != "" {
				resp.Headers[h] = v
			}
		}

		ctx, cancel = context.WithTimeout(context.Background(), idempotencyTimeout)
		defer cancel()
		if err := replays.record(ctx, key, resp); err != nil {
			// The response already happened; only its replay is lost.
			log.Error("record idempotent response", slog.Any("error", err))
			replays.release(key)
		}
		return nil
	}
}

func replay(c *fiber.Ctx, held string, log *slog.Logger) error {
	if held == pendingMarker {
		return errRequestInFlight
	}
	var resp recordedResponse
	if err := json.Unmarshal([]byte(held), &resp); err != nil {
		log.Warn("decode recorded response", slog.Any("error", err))
		return errRequestInFlight
	}
	for h, v := range resp.Headers {
		c.Set(h, v)
	}
	return c.Status(resp.Status).Send(resp.Body)
}
