// Package events fans committed domain events out to listeners: the log,
// metrics, the search cache, websocket clients and NATS.
package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domainevents "volunteer-match/internal/domain/events"
)

// Listener reacts to one committed batch. Errors are logged by the
// dispatcher and never reach the caller whose transaction produced them.
type Listener interface {
	Handle(ctx context.Context, evts []domainevents.Event) error
}

type ListenerFunc func(ctx context.Context, evts []domainevents.Event) error

func (f ListenerFunc) Handle(ctx context.Context, evts []domainevents.Event) error {
	return f(ctx, evts)
}

type FailureObserver interface {
	ListenerFailed(listener string)
}

type registration struct {
	name     string
	listener Listener
}

// Dispatcher delivers batches to listeners in registration order.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []registration
	logger    *zap.Logger
	failures  FailureObserver
}

func NewDispatcher(logger *zap.Logger, failures FailureObserver) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger, failures: failures}
}

func (d *Dispatcher) Register(name string, l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, registration{name: name, listener: l})
}

func (d *Dispatcher) Publish(ctx context.Context, evts []domainevents.Event) {
	if len(evts) == 0 {
		return
	}
	d.mu.RLock()
	listeners := append([]registration(nil), d.listeners...)
	d.mu.RUnlock()

	// Listeners run after the request's work is done; a cancelled request
	// must not stop them.
	ctx = context.WithoutCancel(ctx)
	for _, r := range listeners {
		if err := d.deliver(ctx, r, evts); err != nil {
			d.logger.Warn("event listener failed",
				zap.String("listener", r.name),
				zap.Int("events", len(evts)),
				zap.Error(err),
			)
			if d.failures != nil {
				d.failures.ListenerFailed(r.name)
			}
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, r registration, evts []domainevents.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.listener.Handle(ctx, evts)
}
