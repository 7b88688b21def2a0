package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	declareErr error
	published  []amqp.Publishing
	keys       []string
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	if durable {
		f.declared = append(f.declared, name)
	}
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisherPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitPublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{CheckoutCompletedQueue}, ch.declared)

	ev := CheckoutCompleted{
		SessionID:   "s-1",
		UserID:      "u-1",
		Items:       []LineItem{{ProductID: "p1", Title: "Milk", Quantity: 2, Price: 2.5}},
		TotalAmount: 5,
		Currency:    "INR",
		PaymentID:   "pay_1",
		Timestamp:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishCheckoutCompleted(context.Background(), ev))

	require.Len(t, ch.published, 1)
	assert.Equal(t, CheckoutCompletedQueue, ch.keys[0])
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var decoded CheckoutCompleted
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "CheckoutCompleted", decoded.EventType)
	assert.Equal(t, ev.Items, decoded.Items)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisherDeclareFailure(t *testing.T) {
	_, err := newRabbitPublisher(&fakeChannel{declareErr: errors.New("access refused")})
	assert.ErrorContains(t, err, "declare checkout.completed")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, p.PublishCheckoutCompleted(context.Background(), CheckoutCompleted{SessionID: "s-9"}))
	assert.Contains(t, buf.String(), `"session_id":"s-9"`)
}
