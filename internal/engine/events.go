package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TaskCompleted is published after a completion has been written to the ledger.
type TaskCompleted struct {
	Tenant     string
	TaskID     string
	CategoryID *int
	Points     int
	At         time.Time
}

type CompletionSubscriber interface {
	OnTaskCompleted(ctx context.Context, ev TaskCompleted) error
}

// CompletionSubscriberFunc adapts a function to CompletionSubscriber.
type CompletionSubscriberFunc func(ctx context.Context, ev TaskCompleted) error

func (f CompletionSubscriberFunc) OnTaskCompleted(ctx context.Context, ev TaskCompleted) error {
	return f(ctx, ev)
}

// Dispatcher delivers events synchronously, in subscription order.
type Dispatcher struct {
	mu   sync.RWMutex
	subs []CompletionSubscriber
}

func (d *Dispatcher) Subscribe(s CompletionSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, s)
}

// Publish runs every subscriber, even after a failure, and joins the errors.
func (d *Dispatcher) Publish(ctx context.Context, ev TaskCompleted) error {
	d.mu.RLock()
	subs := append([]CompletionSubscriber(nil), d.subs...)
	d.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.OnTaskCompleted(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
