// Package events carries order lifecycle notifications between the HTTP
// layer and background consumers over RabbitMQ, Kafka or an in-process bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"grocery/internal/models"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// Event is the JSON payload published for an order.
type Event struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	ShopID     string             `json:"shop_id"`
	ConsumerID string             `json:"consumer_id,omitempty"`
	OrderType  models.OrderType   `json:"order_type"`
	Status     models.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total_amount"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(eventType string, order *models.Order) Event {
	evt := Event{
		Type:       eventType,
		OrderID:    order.ID,
		ShopID:     order.ShopID,
		OrderType:  order.OrderType,
		Status:     order.Status,
		Total:      order.TotalAmount,
		OccurredAt: time.Now().UTC(),
	}
	if order.ConsumerID != nil {
		evt.ConsumerID = *order.ConsumerID
	}
	return evt
}

// Key identifies the event on partitioned brokers, e.g. "order-created-<id>".
func (e Event) Key() string {
	name := e.Type
	if len(name) > len("order.") {
		name = name[len("order."):]
	}
	return fmt.Sprintf("order-%s-%s", name, e.OrderID)
}

func decode(body []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode order event: %w", err)
	}
	return evt, nil
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Handler processes one delivered event.
type Handler func(ctx context.Context, evt Event) error

// Bus is a Publisher that can also deliver events to handlers.
type Bus interface {
	Publisher
	// Subscribe registers h. Broker-backed buses start consuming in the
	// background until ctx is done or the bus is closed.
	Subscribe(ctx context.Context, h Handler) error
	Close() error
}
