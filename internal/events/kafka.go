package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"grocery/pkg/kafkabus"
)

const (
	maxHandlerAttempts = 3
	handlerBackoff     = 200 * time.Millisecond
	fetchRetryDelay    = time.Second
)

// Kafka publishes events to a topic and consumes them in a consumer group.
type Kafka struct {
	cfg     kafkabus.Config
	writer  *kafka.Writer
	backoff time.Duration

	mu      sync.Mutex
	readers []*kafka.Reader
}

// NewKafka creates the topic writer; readers are created by Subscribe.
func NewKafka(cfg kafkabus.Config) *Kafka {
	return &Kafka{cfg: cfg, writer: kafkabus.NewWriter(cfg), backoff: handlerBackoff}
}

func (k *Kafka) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.Key()),
		Value: body,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write order event: %w", err)
	}
	return nil
}

// Subscribe starts a reader loop. Offsets are committed after the handler
// succeeds or has failed maxHandlerAttempts times.
func (k *Kafka) Subscribe(ctx context.Context, h Handler) error {
	reader := kafkabus.NewReader(k.cfg)
	k.mu.Lock()
	k.readers = append(k.readers, reader)
	k.mu.Unlock()

	go func() {
		for {
			msg, err := reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				log.Error().Err(err).Msg("error reading order event")
				if !wait(ctx, fetchRetryDelay) {
					return
				}
				continue
			}
			if !k.handle(ctx, h, msg) {
				return
			}
			if err := reader.CommitMessages(ctx, msg); err != nil {
				log.Error().Err(err).Int64("offset", msg.Offset).Msg("error committing order event")
			}
		}
	}()
	return nil
}

// handle runs h for one message, retrying up to maxHandlerAttempts times.
// It returns false when ctx ended before the message was settled, in which
// case the offset must not be committed.
func (k *Kafka) handle(ctx context.Context, h Handler, msg kafka.Message) bool {
	evt, err := decode(msg.Value)
	if err != nil {
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("dropping malformed order event")
		return true
	}
	for attempt := 1; attempt <= maxHandlerAttempts; attempt++ {
		if err = h(ctx, evt); err == nil {
			return true
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("order_id", evt.OrderID).Msg("order event handler failed")
		if attempt < maxHandlerAttempts && !wait(ctx, time.Duration(attempt)*k.backoff) {
			return false
		}
	}
	log.Error().Err(err).Str("order_id", evt.OrderID).Msg("giving up on order event")
	return true
}

// wait sleeps for d and reports false if ctx is done first.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (k *Kafka) Close() error {
	var errs []error
	if err := k.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, r := range k.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
