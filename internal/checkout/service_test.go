package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/storefront/internal/cart"
	"github.com/freshcart/storefront/internal/events"
	"github.com/freshcart/storefront/internal/identity"
	"github.com/freshcart/storefront/internal/logging"
	"github.com/freshcart/storefront/internal/notification"
	"github.com/freshcart/storefront/internal/storage"
)

func ptr[T any](v T) *T { return &v }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.CheckoutCompleted
	err    error
}

func (p *recordingPublisher) PublishCheckoutCompleted(_ context.Context, ev events.CheckoutCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type customers map[string]identity.Profile

func (c customers) Profile(_ context.Context, id string) (identity.Profile, error) {
	p, ok := c[id]
	if !ok {
		return identity.Profile{}, errors.New("missing")
	}
	return p, nil
}

type fixture struct {
	svc   *Service
	carts *cart.Registry
	pub   *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	blobs := storage.NewMemory()
	carts := cart.NewRegistry(cart.NewBlobRepository(blobs), nil)
	pub := &recordingPublisher{}
	svc := NewService(carts, NewBlobRepository(blobs), StaticGateway{}, pub,
		customers{"user-1": {ID: "user-1", Email: "asha@example.com"}}, nil,
		Options{KeyID: "rzp_test_key", Currency: "INR", StoreName: "FreshCart"}, logging.Discard())
	return fixture{svc: svc, carts: carts, pub: pub}
}

func (f fixture) fillCart(t *testing.T, owner string) {
	t.Helper()
	ctx := context.Background()
	store := f.carts.For(owner)
	_, err := store.AddProduct(ctx, cart.ProductInput{ID: "p1", Title: ptr("Milk"), Price: ptr(49.99)})
	require.NoError(t, err)
	_, err = store.AddProduct(ctx, cart.ProductInput{ID: "p2", Title: ptr("Bread"), Price: ptr(30.0)})
	require.NoError(t, err)
	_, err = store.UpdateProductQuantity(ctx, "p2", 2)
	require.NoError(t, err)
}

var validForm = Form{City: "Pune", Details: "Leave at the door", Phone: "9876543210"}

func TestBeginBuildsOrderFromCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "user-1")

	sess, opts, err := f.svc.Begin(context.Background(), "user-1", validForm)
	require.NoError(t, err)

	assert.Equal(t, StateProcessing, sess.State)
	assert.Equal(t, "Order for Milk, Bread", sess.Description)
	assert.Equal(t, int64(10999), sess.Amount)
	assert.NotEmpty(t, sess.GatewayOrderID)

	assert.Equal(t, "rzp_test_key", opts.Key)
	assert.Equal(t, int64(10999), opts.Amount)
	assert.Equal(t, "INR", opts.Currency)
	assert.Equal(t, "FreshCart", opts.Name)
	assert.Equal(t, Prefill{Email: "asha@example.com", Contact: "9876543210"}, opts.Prefill)

	stored, err := f.svc.Get(context.Background(), "user-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, stored.ID)
}

func TestBeginRejectsInvalidFormAndEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Begin(ctx, "user-1", validForm)
	assert.ErrorIs(t, err, ErrEmptyCart)

	f.fillCart(t, "user-1")
	_, _, err = f.svc.Begin(ctx, "user-1", Form{City: "Po", Phone: "1234567890"})
	assert.ErrorIs(t, err, ErrInvalidForm)
}

func TestCompleteEmptiesCartAndPublishesOnce(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "user-1")
	ctx := context.Background()

	sess, _, err := f.svc.Begin(ctx, "user-1", validForm)
	require.NoError(t, err)

	notes := notification.NewCollector()
	done, err := f.svc.Complete(notification.WithNotifier(ctx, notes), "user-1", sess.ID, "pay_123")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, done.State)
	assert.Equal(t, "pay_123", done.PaymentID)
	remaining, err := f.carts.For("user-1").Load(ctx)
	require.NoError(t, err)
	assert.True(t, remaining.IsEmpty())

	var messages []string
	for _, n := range notes.Notices() {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, "Payment successful")

	again, err := f.svc.Complete(ctx, "user-1", sess.ID, "pay_123")
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(*again.CompletedAt))

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, "user-1", ev.UserID)
	assert.Len(t, ev.Items, 2)
	assert.Equal(t, 2, ev.Items[1].Quantity)
}

func TestCompleteOrdersSessionLinesAndClearsWholeCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "user-1")
	ctx := context.Background()
	sess, _, err := f.svc.Begin(ctx, "user-1", validForm)
	require.NoError(t, err)

	_, err = f.carts.For("user-1").AddProduct(ctx, cart.ProductInput{ID: "late", Title: ptr("Eggs"), Price: ptr(5.0)})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, "user-1", sess.ID, "pay_9")
	require.NoError(t, err)

	remaining, err := f.carts.For("user-1").Load(ctx)
	require.NoError(t, err)
	assert.True(t, remaining.IsEmpty())

	require.Len(t, f.pub.events, 1)
	for _, item := range f.pub.events[0].Items {
		assert.NotEqual(t, "late", item.ProductID)
	}
}

func TestCompleteRetriesFailedPublish(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "user-1")
	ctx := context.Background()
	sess, _, err := f.svc.Begin(ctx, "user-1", validForm)
	require.NoError(t, err)

	f.pub.err = errors.New("broker down")
	done, err := f.svc.Complete(ctx, "user-1", sess.ID, "pay_1")
	require.NoError(t, err)
	assert.False(t, done.Published)

	f.pub.err = nil
	done, err = f.svc.Complete(ctx, "user-1", sess.ID, "pay_1")
	require.NoError(t, err)
	assert.True(t, done.Published)
	assert.Len(t, f.pub.events, 1)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "user-1")
	ctx := context.Background()
	sess, _, err := f.svc.Begin(ctx, "user-1", validForm)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, "user-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, cancelled.State)
	kept, err := f.carts.For("user-1").Load(ctx)
	require.NoError(t, err)
	assert.False(t, kept.IsEmpty())

	_, err = f.svc.Complete(ctx, "user-1", sess.ID, "pay_1")
	assert.ErrorIs(t, err, ErrNotProcessing)
}

func TestSessionsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "user-1")
	ctx := context.Background()
	sess, _, err := f.svc.Begin(ctx, "user-1", validForm)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "user-2", sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Complete(ctx, "user-2", sess.ID, "pay_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMinorUnitsRounds(t *testing.T) {
	assert.Equal(t, int64(10999), MinorUnits(109.99))
	assert.Equal(t, int64(50), MinorUnits(0.5))
	assert.Equal(t, int64(0), MinorUnits(0))
}
