package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshcart/storefront/internal/apperror"
	"github.com/freshcart/storefront/internal/cart"
	"github.com/freshcart/storefront/internal/events"
	"github.com/freshcart/storefront/internal/identity"
	"github.com/freshcart/storefront/internal/notification"
	"github.com/freshcart/storefront/internal/validation"
)

var (
	ErrInvalidForm    = apperror.Validation("Invalid checkout details")
	ErrEmptyCart      = apperror.Validation("Your cart is empty")
	ErrNotFound       = apperror.NotFound("Checkout session not found")
	ErrNotProcessing  = apperror.Conflict("Checkout is no longer in progress")
	ErrMissingPayment = apperror.Validation("paymentId is required")
)

// Customers looks up the profile used to prefill the payment widget.
type Customers interface {
	Profile(ctx context.Context, id string) (identity.Profile, error)
}

// Options are the merchant settings shown in the widget.
type Options struct {
	KeyID     string
	Currency  string
	StoreName string
}

// Service drives checkout sessions from processing to succeeded or cancelled.
type Service struct {
	mu        sync.Mutex
	carts     *cart.Registry
	sessions  Repository
	gateway   Gateway
	publisher events.Publisher
	customers Customers
	notifier  notification.Notifier
	opts      Options
	logger    *slog.Logger
	validate  *validation.Validator
	now       func() time.Time
}

// NewService wires checkout to the carts it settles. A nil gateway falls back
// to StaticGateway.
func NewService(carts *cart.Registry, sessions Repository, gateway Gateway, publisher events.Publisher,
	customers Customers, notifier notification.Notifier, opts Options, logger *slog.Logger) *Service {
	if gateway == nil {
		gateway = StaticGateway{}
	}
	return &Service{
		carts:     carts,
		sessions:  sessions,
		gateway:   gateway,
		publisher: publisher,
		customers: customers,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		validate:  validation.New(),
		now:       time.Now,
	}
}

// Begin validates the form, prices the owner's current cart and registers a
// payment order. Nothing is stored when validation fails.
func (s *Service) Begin(ctx context.Context, owner string, form Form) (Session, WidgetOptions, error) {
	form.City = strings.TrimSpace(form.City)
	form.Details = strings.TrimSpace(form.Details)
	form.Phone = strings.TrimSpace(form.Phone)
	if err := s.validate.Struct(form, ErrInvalidForm.Message); err != nil {
		return Session{}, WidgetOptions{}, err
	}

	snap, err := s.carts.For(owner).Load(ctx)
	if err != nil && !errors.Is(err, cart.ErrCorrupt) {
		return Session{}, WidgetOptions{}, apperror.Internal("Checkout failed", err)
	}
	if snap.IsEmpty() {
		return Session{}, WidgetOptions{}, ErrEmptyCart
	}

	sess := Session{
		ID:          uuid.NewString(),
		OwnerID:     owner,
		State:       StateProcessing,
		Form:        form,
		Lines:       snap.Products,
		Total:       snap.TotalCartPrice,
		Description: Description(snap),
		Amount:      MinorUnits(snap.TotalCartPrice),
		Currency:    s.opts.Currency,
		CreatedAt:   s.now().UTC(),
	}

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{Amount: sess.Amount, Currency: sess.Currency, Receipt: sess.ID})
	if err != nil {
		return Session{}, WidgetOptions{}, apperror.Internal("Checkout failed", fmt.Errorf("create payment order: %w", err))
	}
	sess.GatewayOrderID = order.ID

	if err := s.sessions.Save(ctx, sess); err != nil {
		return Session{}, WidgetOptions{}, apperror.Internal("Checkout failed", err)
	}
	return sess, s.widgetOptions(ctx, sess), nil
}

// Complete settles a session after the widget reports a successful payment:
// it empties the owner's whole cart, publishes CheckoutCompleted and sends
// the success notice. The order itself is the Lines frozen at Begin; lines
// added to the cart after Begin are cleared too, as the storefront's payment
// callback always did. Calling it again for a settled session finishes any step that
// failed earlier and otherwise changes nothing.
func (s *Service) Complete(ctx context.Context, owner, id, paymentID string) (Session, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return Session{}, ErrMissingPayment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(ctx, owner, id)
	if err != nil {
		return Session{}, err
	}

	switch sess.State {
	case StateCancelled:
		return sess, ErrNotProcessing
	case StateProcessing:
		completed := s.now().UTC()
		sess.State = StateSucceeded
		sess.PaymentID = paymentID
		sess.CompletedAt = &completed
		if err := s.sessions.Save(ctx, sess); err != nil {
			return Session{}, apperror.Internal("Checkout failed", err)
		}
		_ = notification.Deliver(ctx, s.notifier, notification.Success(notification.KindCheckoutSuccess, "Payment successful"))
	}

	if !sess.CartCleared {
		if _, err := s.carts.For(owner).EmptyCart(ctx); err != nil {
			return sess, apperror.Internal("Checkout failed", fmt.Errorf("empty cart: %w", err))
		}
		sess.CartCleared = true
		if err := s.sessions.Save(ctx, sess); err != nil {
			return sess, apperror.Internal("Checkout failed", err)
		}
	}

	if !sess.Published && s.publisher != nil {
		if err := s.publisher.PublishCheckoutCompleted(ctx, completedEvent(sess)); err != nil {
			s.logger.Warn("publish checkout completed",
				slog.String("session_id", sess.ID),
				slog.Any("error", err),
			)
			return sess, nil
		}
		sess.Published = true
		if err := s.sessions.Save(ctx, sess); err != nil {
			s.logger.Warn("mark checkout published", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	}
	return sess, nil
}

// Cancel abandons a processing session, returning the customer to the form.
// Cancelling twice is a no-op; a paid session cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, owner, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(ctx, owner, id)
	if err != nil {
		return Session{}, err
	}
	switch sess.State {
	case StateCancelled:
		return sess, nil
	case StateSucceeded:
		return sess, ErrNotProcessing
	}

	sess.State = StateCancelled
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Session{}, apperror.Internal("Checkout failed", err)
	}
	_ = notification.Deliver(ctx, s.notifier, notification.Info(notification.KindCheckoutCanceled, "Payment cancelled"))
	return sess, nil
}

// Get returns the owner's session.
func (s *Service) Get(ctx context.Context, owner, id string) (Session, error) {
	return s.get(ctx, owner, id)
}

func (s *Service) get(ctx context.Context, owner, id string) (Session, error) {
	sess, err := s.sessions.Get(ctx, owner, id)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, apperror.Internal("Checkout failed", err)
	}
	return sess, nil
}

func (s *Service) widgetOptions(ctx context.Context, sess Session) WidgetOptions {
	opts := WidgetOptions{
		Key:         s.opts.KeyID,
		Amount:      sess.Amount,
		Currency:    sess.Currency,
		Name:        s.opts.StoreName,
		Description: sess.Description,
		OrderID:     sess.GatewayOrderID,
		Prefill:     Prefill{Contact: sess.Form.Phone},
		Theme:       Theme{Color: themeColor},
	}
	if s.customers != nil {
		if p, err := s.customers.Profile(ctx, sess.OwnerID); err == nil {
			opts.Prefill.Email = p.Email
		}
	}
	return opts
}

// Description names the order after the titles in the cart.
func Description(snap cart.Snapshot) string {
	return "Order for " + strings.Join(snap.Titles(), ", ")
}

// MinorUnits converts a decimal total into the smallest currency unit.
func MinorUnits(total float64) int64 {
	return int64(math.Round(total * 100))
}

func completedEvent(sess Session) events.CheckoutCompleted {
	ev := events.CheckoutCompleted{
		EventType:   "CheckoutCompleted",
		SessionID:   sess.ID,
		UserID:      sess.OwnerID,
		TotalAmount: sess.Total,
		Currency:    sess.Currency,
		PaymentID:   sess.PaymentID,
		Timestamp:   time.Now().UTC(),
	}
	if sess.CompletedAt != nil {
		ev.Timestamp = *sess.CompletedAt
	}
	for _, l := range sess.Lines {
		ev.Items = append(ev.Items, events.LineItem{
			ProductID: l.Product.ID,
			Title:     l.Product.Title,
			Quantity:  l.Count,
			Price:     l.Price,
		})
	}
	return ev
}
