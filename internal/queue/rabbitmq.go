package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// GeneratedMessagesQueue carries every message produced by the generators so
// the worker can record it in the history table.
const GeneratedMessagesQueue = "generated_messages"

type RabbitMQ struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   amqp091.Queue
	mu      sync.Mutex
}

type GeneratedMessageEvent struct {
	Channel     string    `json:"channel"`
	CustomerID  string    `json:"customer_id,omitempty"`
	TemplateID  string    `json:"template_id,omitempty"`
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Publisher is implemented by RabbitMQ. Generators depend on it so they can
// run without a broker.
type Publisher interface {
	PublishGeneratedMessage(ctx context.Context, event GeneratedMessageEvent) error
}

// NewRabbitMQ creates a new RabbitMQ connection and declares the generated_messages queue
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	var conn *amqp091.Connection
	var err error

	// Retry connection up to 10 times with 2 second delay
	for i := 0; i < 10; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msgf("failed to connect to RabbitMQ, retrying in 2s (%d/10)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to connect to RabbitMQ after retries")
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		log.Error().Err(err).Msg("failed to open channel")
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		GeneratedMessagesQueue, // name
		true,                   // durable
		false,                  // delete when unused
		false,                  // exclusive
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		log.Error().Err(err).Msg("failed to declare queue")
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	log.Info().Str("queue", queue.Name).Msg("connected to RabbitMQ and declared queue")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// PublishGeneratedMessage publishes a generated message to the history queue
func (r *RabbitMQ) PublishGeneratedMessage(ctx context.Context, event GeneratedMessageEvent) error {
	if event.GeneratedAt.IsZero() {
		event.GeneratedAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key (queue name)
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Timestamp:    event.GeneratedAt,
			Body:         body,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("channel", event.Channel).Msg("failed to publish message")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("channel", event.Channel).Str("template_id", event.TemplateID).Msg("published message to queue")
	return nil
}

// Consume returns a channel of deliveries for the generated_messages queue
func (r *RabbitMQ) Consume() (<-chan amqp091.Delivery, error) {
	if err := r.channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack (we will manual ack)
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}
	return msgs, nil
}

// Ping checks if the RabbitMQ connection and channel are open
func (r *RabbitMQ) Ping() error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("connection is closed")
	}
	if r.channel == nil || r.channel.IsClosed() {
		return fmt.Errorf("channel is closed")
	}
	return nil
}

// Close closes the RabbitMQ connection and channel
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close channel")
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close connection")
			return err
		}
	}
	log.Info().Msg("closed RabbitMQ connection")
	return nil
}

// Publish sends the event to the queue when a publisher is configured and only
// logs failures, so generation never fails because of the history pipeline.
func Publish(ctx context.Context, p Publisher, event GeneratedMessageEvent) {
	if p == nil {
		return
	}
	if err := p.PublishGeneratedMessage(ctx, event); err != nil {
		log.Warn().Err(err).Str("channel", event.Channel).Msg("failed to record generated message")
	}
}
