package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"

	"grocery/pkg/rabbitmq"
)

const consumerTag = "grocery-order-events"

// RabbitMQ publishes events to a durable queue.
type RabbitMQ struct {
	client *rabbitmq.Client
}

// NewRabbitMQ wraps a connected client.
func NewRabbitMQ(client *rabbitmq.Client) *RabbitMQ {
	return &RabbitMQ{client: client}
}

func (r *RabbitMQ) Publish(_ context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return r.client.Publish(evt.Type, body)
}

// Subscribe consumes the queue until ctx is done.
func (r *RabbitMQ) Subscribe(ctx context.Context, h Handler) error {
	if err := r.client.Consume(consumerTag, deliveryHandler(ctx, h)); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		if err := r.client.Cancel(consumerTag); err != nil {
			log.Warn().Err(err).Msg("failed to cancel RabbitMQ consumer")
		}
	}()
	return nil
}

// deliveryHandler decodes a delivery and runs h. Handler errors are returned
// so the message is requeued; bodies that cannot be decoded are logged and
// acknowledged, since redelivery would fail the same way.
func deliveryHandler(ctx context.Context, h Handler) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		evt, err := decode(msg.Body)
		if err != nil {
			log.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("dropping malformed order event")
			return nil
		}
		return h(ctx, evt)
	}
}

func (r *RabbitMQ) Close() error {
	return r.client.Close()
}
