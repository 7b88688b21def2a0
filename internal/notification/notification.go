package notification

import (
	"context"
	"log/slog"
	"sync"
)

// Levels mirror the toast styles the storefront renders.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Notice kinds.
const (
	KindCartAdded        = "cart.added"
	KindCartRemoved      = "cart.removed"
	KindCartQuantity     = "cart.quantity"
	KindCartCleared      = "cart.cleared"
	KindCartInvalid      = "cart.invalid"
	KindWishlistAdded    = "wishlist.added"
	KindWishlistExists   = "wishlist.exists"
	KindWishlistRemoved  = "wishlist.removed"
	KindWishlistInvalid  = "wishlist.invalid"
	KindCheckoutSuccess  = "checkout.success"
	KindCheckoutCanceled = "checkout.canceled"
)

// Notice is a user-visible message produced by a store mutation.
type Notice struct {
	Level   string `json:"level"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Notifier delivers notices to whoever presents them to the user.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// Success builds a success notice.
func Success(kind, message string) Notice {
	return Notice{Level: LevelSuccess, Kind: kind, Message: message}
}

// Info builds an informational notice.
func Info(kind, message string) Notice {
	return Notice{Level: LevelInfo, Kind: kind, Message: message}
}

// Error builds an error notice.
func Error(kind, message string) Notice {
	return Notice{Level: LevelError, Kind: kind, Message: message}
}

// Collector records notices so a request handler can return them with its response.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Notify appends the notice.
func (c *Collector) Notify(_ context.Context, notice Notice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notice)
	return nil
}

// Notices returns a copy of the recorded notices, never nil.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// LoggerNotifier writes notices to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Notify writes the notice at debug level.
func (n *LoggerNotifier) Notify(ctx context.Context, notice Notice) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.DebugContext(ctx, "notice", "level", notice.Level, "kind", notice.Kind, "message", notice.Message)
	return nil
}

// Multi fans a notice out to every non-nil notifier and returns the first error.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, notice Notice) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, notice); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type ctxKey struct{}

// WithNotifier returns a context whose notices are also delivered to n. Handlers
// use it to attach a per-request Collector to long-lived stores.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

// FromContext returns the notifier attached with WithNotifier, or nil.
func FromContext(ctx context.Context) Notifier {
	n, _ := ctx.Value(ctxKey{}).(Notifier)
	return n
}

// Deliver sends notice to base and to the notifier carried by ctx.
func Deliver(ctx context.Context, base Notifier, notice Notice) error {
	return Multi(base, FromContext(ctx)).Notify(ctx, notice)
}
