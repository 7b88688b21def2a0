package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes JSON events to durable queues on the default exchange.
type RabbitPublisher struct {
	ch channel
}

// NewRabbitPublisher opens a channel on conn and declares the checkout queue.
func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return p, nil
}

func newRabbitPublisher(ch channel) (*RabbitPublisher, error) {
	if _, err := ch.QueueDeclare(CheckoutCompletedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", CheckoutCompletedQueue, err)
	}
	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCheckoutCompleted(ctx context.Context, ev CheckoutCompleted) error {
	if ev.EventType == "" {
		ev.EventType = "CheckoutCompleted"
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CheckoutCompleted: %w", err)
	}
	return p.publishJSON(ctx, CheckoutCompletedQueue, body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
