package events

import (
	"context"
	"errors"
	"sync"
)

// Direct delivers events synchronously to in-process handlers.
type Direct struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewDirect returns an empty in-process bus.
func NewDirect() *Direct {
	return &Direct{}
}

// Publish runs every handler in registration order and joins their errors.
func (d *Direct) Publish(ctx context.Context, evt Event) error {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers...)
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Direct) Subscribe(_ context.Context, h Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
	return nil
}

func (d *Direct) Close() error { return nil }
