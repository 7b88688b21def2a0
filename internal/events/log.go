package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the logger. It stands in for the broker when
// RABBITMQ_URL is unset.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishCheckoutCompleted(ctx context.Context, ev CheckoutCompleted) error {
	p.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", ev.SessionID),
		slog.String("user_id", ev.UserID),
		slog.Int("items", len(ev.Items)),
		slog.Float64("total", ev.TotalAmount),
		slog.String("currency", ev.Currency),
		slog.String("payment_id", ev.PaymentID),
	)
	return nil
}
