package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery/internal/models"
	"grocery/pkg/rabbitmq"
)

type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	return m.Called(tag, multiple).Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	return m.Called(tag, multiple, requeue).Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Called(tag, requeue).Error(0)
}

func encodedEvent(t *testing.T, status models.OrderStatus) []byte {
	t.Helper()
	order := sampleOrder()
	order.Status = status
	body, err := json.Marshal(NewOrderEvent(OrderStatusChanged, order))
	require.NoError(t, err)
	return body
}

func TestRabbitMQDeliveryAcknowledgement(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Ack", uint64(1), false).Return(nil).Once()
	ack.On("Nack", uint64(2), false, true).Return(nil).Once()
	ack.On("Ack", uint64(3), false).Return(nil).Once()

	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: encodedEvent(t, models.StatusCompleted)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: encodedEvent(t, models.StatusDelivered)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("not json")}
	close(msgs)

	var handled []models.OrderStatus
	h := func(_ context.Context, evt Event) error {
		handled = append(handled, evt.Status)
		if evt.Status == models.StatusDelivered {
			return errors.New("invoice store unavailable")
		}
		return nil
	}
	rabbitmq.Deliver(msgs, deliveryHandler(context.Background(), h))

	// The malformed body never reaches the handler and is not requeued.
	assert.Equal(t, []models.OrderStatus{models.StatusCompleted, models.StatusDelivered}, handled)
	ack.AssertExpectations(t)
}

func TestKafkaHandleGivesUpAfterMaxAttempts(t *testing.T) {
	k := &Kafka{backoff: time.Millisecond}
	calls := 0
	settled := k.handle(context.Background(), func(context.Context, Event) error {
		calls++
		return errors.New("always failing")
	}, kafka.Message{Key: []byte("order-created-order-1"), Value: encodedEvent(t, models.StatusPending)})

	assert.True(t, settled)
	assert.Equal(t, maxHandlerAttempts, calls)
}

func TestKafkaHandleRetriesUntilSuccess(t *testing.T) {
	k := &Kafka{backoff: time.Millisecond}
	calls := 0
	settled := k.handle(context.Background(), func(context.Context, Event) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, kafka.Message{Value: encodedEvent(t, models.StatusCompleted)})

	assert.True(t, settled)
	assert.Equal(t, 2, calls)
}

func TestKafkaHandleDropsMalformedMessage(t *testing.T) {
	k := &Kafka{backoff: time.Millisecond}
	called := false
	settled := k.handle(context.Background(), func(context.Context, Event) error {
		called = true
		return nil
	}, kafka.Message{Key: []byte("junk"), Value: []byte("{")})

	assert.True(t, settled)
	assert.False(t, called)
}

func TestKafkaHandleStopsBackoffOnShutdown(t *testing.T) {
	k := &Kafka{backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	msg := kafka.Message{Value: encodedEvent(t, models.StatusCompleted)}
	done := make(chan bool, 1)
	go func() {
		done <- k.handle(ctx, func(context.Context, Event) error {
			calls++
			cancel()
			return errors.New("failing")
		}, msg)
	}()

	select {
	case settled := <-done:
		assert.False(t, settled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("handle kept waiting after the context was cancelled")
	}
}

func TestWait(t *testing.T) {
	assert.True(t, wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, wait(ctx, time.Hour))
}
