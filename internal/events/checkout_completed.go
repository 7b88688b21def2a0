// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"time"
)

// CheckoutCompletedQueue receives one message per paid checkout.
const CheckoutCompletedQueue = "checkout.completed"

type CheckoutCompleted struct {
	EventType   string     `json:"eventType"`
	SessionID   string     `json:"sessionId"`
	UserID      string     `json:"userId"`
	Items       []LineItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	Currency    string     `json:"currency"`
	PaymentID   string     `json:"paymentId"`
	Timestamp   time.Time  `json:"timestamp"`
}

type LineItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Publisher delivers checkout events.
type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, ev CheckoutCompleted) error
}
