package checkout

import (
	"context"

	"github.com/google/uuid"
)

// Gateway registers payment orders with the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}

// OrderRequest is the amount to collect for one session.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
}

// Order is the provider's handle for a registered payment.
type Order struct {
	ID     string
	Status string
}

// StaticGateway accepts every order with a synthetic id. It backs development
// and tests; the widget collects the money itself.
type StaticGateway struct{}

func (StaticGateway) CreateOrder(_ context.Context, _ OrderRequest) (Order, error) {
	return Order{ID: "order_" + uuid.NewString(), Status: "created"}, nil
}
