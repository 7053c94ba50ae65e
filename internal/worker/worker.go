package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/domains/messages"
	messagesModels "github.com/keyboxhn/keybox/internal/domains/messages/models"
	"github.com/keyboxhn/keybox/internal/metrics"
	"github.com/keyboxhn/keybox/internal/queue"
)

// Consumer delivers generated-message events.
type Consumer interface {
	Consume() (<-chan amqp091.Delivery, error)
}

// Recorder stores generated messages in the history table.
type Recorder interface {
	Record(ctx context.Context, event queue.GeneratedMessageEvent) (messagesModels.GeneratedMessage, error)
}

// Worker records every generated message published by the API.
type Worker struct {
	consumer     Consumer
	recorder     Recorder
	requeueDelay time.Duration
}

func NewWorker(consumer Consumer, db messagesModels.DBTX) *Worker {
	return &Worker{
		consumer:     consumer,
		recorder:     messages.NewService(messages.NewRepository(db)),
		requeueDelay: time.Second,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.consumer.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	log.Info().Msg("worker started, waiting for generated messages")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker shutting down")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("rabbitMQ channel closed")
			}
			w.processMessage(ctx, d)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, d amqp091.Delivery) {
	var event queue.GeneratedMessageEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal generated message event")
		metrics.HistoryRecordedTotal.WithLabelValues("rejected").Inc()
		d.Reject(false)
		return
	}

	msg, err := w.recorder.Record(ctx, event)
	if err != nil {
		if errors.Is(err, messages.ErrInvalidEvent) {
			log.Error().Err(err).Str("channel", event.Channel).Msg("rejecting generated message event")
			metrics.HistoryRecordedTotal.WithLabelValues("rejected").Inc()
			d.Reject(false)
			return
		}

		// Storage is probably unavailable; try again later
		log.Error().Err(err).Str("channel", event.Channel).Msg("failed to record generated message, requeueing")
		metrics.HistoryRecordedTotal.WithLabelValues("requeued").Inc()
		if w.requeueDelay > 0 {
			time.Sleep(w.requeueDelay)
		}
		d.Nack(false, true)
		return
	}

	log.Debug().Str("message_id", msg.ID.String()).Str("channel", msg.Channel).Msg("generated message recorded")
	metrics.HistoryRecordedTotal.WithLabelValues("recorded").Inc()
	d.Ack(false)
}
