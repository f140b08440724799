// Package rabbitmq provides the event-sink adapter delivering order event
// envelopes to a durable RabbitMQ queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orders/internal/core/domain/model/outbox"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher implements ports.EventPublisher on a RabbitMQ channel.
//
// Failed publishes are not retried here: the outbox relay owns retry, so a
// failed delivery simply leaves the outbox row unpublished for the next pass.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// NewPublisher connects to RabbitMQ and declares the target queue as durable.
// The connection is retried a few times because the broker may still be
// starting when the service comes up.
func NewPublisher(url string, queueName string, logger *slog.Logger) (*Publisher, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < 10; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ, retrying in 2s", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		queue:   queueName,
		logger:  logger.With("component", "rabbitmq_publisher"),
	}, nil
}

// Publish delivers one envelope to the queue with persistent delivery mode.
// The AMQP message id carries the envelope id, which consumers use as their
// deduplication key across at-least-once redeliveries.
func (p *Publisher) Publish(ctx context.Context, envelope outbox.Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			MessageId:    envelope.ID,
			Type:         envelope.Type,
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("failed to close channel", "error", err)
	}
	if err := p.conn.Close(); err != nil {
		p.logger.Warn("failed to close connection", "error", err)
	}
}
