package infra

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NewRabbitConnection dials the broker at url.
func NewRabbitConnection(url string) (*amqp.Connection, error) {
	if url == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	return conn, nil
}
