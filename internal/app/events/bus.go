// Package events is the message-passing boundary between the lifecycle state
// machine and its side-effecting collaborators. Transitions publish; audit,
// notification and artifact handlers subscribe. The machine never calls a
// collaborator directly and never waits for one to succeed.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dmorales/becas-core/internal/app/lifecycle"
)

// Handler consumes lifecycle transition events. Handlers must tolerate
// failure in isolation: an error in one handler never affects the others and
// never reaches the publisher.
type Handler interface {
	Name() string
	Handle(ctx context.Context, ev lifecycle.TransitionEvent) error
}

// Bus delivers transition events to subscribed handlers. Publishing is
// non-blocking for the caller; a single dispatch goroutine preserves event
// order, which the audit trail depends on.
type Bus struct {
	inbox    chan lifecycle.TransitionEvent
	handlers []Handler
	logger   zerolog.Logger

	mu      sync.RWMutex
	done    chan struct{}
	started bool
}

// NewBus creates a bus with a buffered inbox.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		inbox:  make(chan lifecycle.TransitionEvent, 256),
		logger: logger.With().Str("component", "event_bus").Logger(),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a handler. Must be called before Start.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Start launches the dispatch loop.
func (b *Bus) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go b.run(ctx)
}

func (b *Bus) run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case ev, ok := <-b.inbox:
			if !ok {
				return
			}
			b.dispatch(ctx, ev)
		case <-ctx.Done():
			// Drain whatever is already queued so committed transitions
			// still reach the audit log during shutdown.
			for {
				select {
				case ev, ok := <-b.inbox:
					if !ok {
						return
					}
					b.dispatch(context.Background(), ev)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, ev lifecycle.TransitionEvent) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, ev); err != nil {
			b.logger.Error().
				Err(err).
				Str("handler", h.Name()).
				Int64("recordId", ev.RecordID).
				Str("event", string(ev.Event)).
				Msg("Event handler failed")
		}
	}
}

// Publish enqueues an event for delivery. It drops the event with an error
// log if the inbox is full rather than block a committed transition.
func (b *Bus) Publish(ev lifecycle.TransitionEvent) {
	select {
	case b.inbox <- ev:
	default:
		b.logger.Error().
			Int64("recordId", ev.RecordID).
			Str("event", string(ev.Event)).
			Msg("Event inbox full, event dropped")
	}
}

// Close stops accepting events and waits for the dispatch loop to finish.
func (b *Bus) Close() {
	close(b.inbox)
	<-b.done
}
