// Package checkout turns a cart snapshot into a payment order, hands payment
// collection to an external widget and settles the cart when the widget
// reports success.
package checkout

import (
	"time"

	"github.com/freshcart/storefront/internal/cart"
)

// State is the lifecycle of a checkout session.
type State string

const (
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateCancelled  State = "cancelled"
)

// Form is the delivery address and contact the customer submits.
type Form struct {
	City    string `json:"city" validate:"required,min=3"`
	Details string `json:"details"`
	Phone   string `json:"phone" validate:"required,mobile"`
}

// Session records one attempt to pay for a cart. Amount is in minor units.
type Session struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"ownerId"`
	State          State       `json:"state"`
	Form           Form        `json:"form"`
	Lines          []cart.Line `json:"lines"`
	Total          float64     `json:"total"`
	Description    string      `json:"description"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	GatewayOrderID string      `json:"gatewayOrderId"`
	PaymentID      string      `json:"paymentId,omitempty"`
	CartCleared    bool        `json:"cartCleared"`
	Published      bool        `json:"published"`
	CreatedAt      time.Time   `json:"createdAt"`
	CompletedAt    *time.Time  `json:"completedAt,omitempty"`
}

// WidgetOptions configure the client-side payment widget.
type WidgetOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"orderId"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

type Prefill struct {
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

const themeColor = "#10b981"
