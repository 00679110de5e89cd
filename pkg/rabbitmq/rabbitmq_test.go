package rabbitmq

import (
	"errors"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAcknowledger records the acknowledgements sent for deliveries.
type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	args := m.Called(tag, multiple)
	return args.Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	args := m.Called(tag, multiple, requeue)
	return args.Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	args := m.Called(tag, requeue)
	return args.Error(0)
}

func deliveries(ack amqp.Acknowledger, bodies ...string) <-chan amqp.Delivery {
	msgs := make(chan amqp.Delivery, len(bodies))
	for i, body := range bodies {
		msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: uint64(i + 1), Body: []byte(body)}
	}
	close(msgs)
	return msgs
}

func TestDeliverAcksHandledMessages(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Ack", uint64(1), false).Return(nil).Once()
	ack.On("Ack", uint64(2), false).Return(nil).Once()

	var seen []string
	Deliver(deliveries(ack, "first", "second"), func(msg amqp.Delivery) error {
		seen = append(seen, string(msg.Body))
		return nil
	})

	assert.Equal(t, []string{"first", "second"}, seen)
	ack.AssertExpectations(t)
	ack.AssertNotCalled(t, "Nack", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverRequeuesFailedMessages(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Nack", uint64(1), false, true).Return(nil).Once()
	ack.On("Ack", uint64(2), false).Return(nil).Once()

	Deliver(deliveries(ack, "bad", "good"), func(msg amqp.Delivery) error {
		if string(msg.Body) == "bad" {
			return errors.New("database unavailable")
		}
		return nil
	})

	ack.AssertExpectations(t)
}

func TestDeliverKeepsGoingWhenAckFails(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Ack", uint64(1), false).Return(errors.New("channel closed")).Once()
	ack.On("Nack", uint64(2), false, true).Return(errors.New("channel closed")).Once()

	calls := 0
	Deliver(deliveries(ack, "a", "b"), func(msg amqp.Delivery) error {
		calls++
		if calls == 2 {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, 2, calls)
	ack.AssertExpectations(t)
}
