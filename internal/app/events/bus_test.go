package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/becas-core/internal/app/lifecycle"
	"github.com/dmorales/becas-core/internal/app/models"
)

type recordingHandler struct {
	name string
	fail bool

	mu   sync.Mutex
	seen []lifecycle.TransitionEvent
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Handle(_ context.Context, ev lifecycle.TransitionEvent) error {
	h.mu.Lock()
	h.seen = append(h.seen, ev)
	h.mu.Unlock()
	if h.fail {
		return errors.New("handler exploded")
	}
	return nil
}

func (h *recordingHandler) events() []lifecycle.TransitionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]lifecycle.TransitionEvent(nil), h.seen...)
}

func transitionEvent(recordID int64) lifecycle.TransitionEvent {
	return lifecycle.TransitionEvent{
		RecordID:  recordID,
		Event:     lifecycle.EventApproveDocs,
		From:      models.StatusDocsUploaded,
		To:        models.StatusApproved,
		ActorRole: models.RoleReviewer,
	}
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	handler := &recordingHandler{name: "recorder"}
	bus.Subscribe(handler)
	bus.Start(context.Background())

	for i := int64(1); i <= 50; i++ {
		bus.Publish(transitionEvent(i))
	}
	bus.Close()

	seen := handler.events()
	require.Len(t, seen, 50)
	for i, ev := range seen {
		assert.Equal(t, int64(i+1), ev.RecordID, "events arrive in publish order")
	}
}

func TestBusHandlerFailureIsIsolated(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	failing := &recordingHandler{name: "audit", fail: true}
	healthy := &recordingHandler{name: "notifier"}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)
	bus.Start(context.Background())

	bus.Publish(transitionEvent(1))
	bus.Publish(transitionEvent(2))
	bus.Close()

	// The failing handler still saw everything and never blocked the other.
	assert.Len(t, failing.events(), 2)
	assert.Len(t, healthy.events(), 2)
}

func TestBusCloseDrainsQueuedEvents(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	handler := &recordingHandler{name: "recorder"}
	bus.Subscribe(handler)

	// Queue before the dispatch loop even starts; Close must still deliver.
	for i := int64(1); i <= 10; i++ {
		bus.Publish(transitionEvent(i))
	}
	bus.Start(context.Background())
	bus.Close()

	assert.Len(t, handler.events(), 10)
}

func TestBusDropsWhenInboxFull(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	handler := &recordingHandler{name: "recorder"}
	bus.Subscribe(handler)

	// Never started: the inbox (capacity 256) fills and the rest is dropped
	// instead of blocking the publisher.
	for i := int64(0); i < 300; i++ {
		bus.Publish(transitionEvent(i))
	}

	bus.Start(context.Background())
	bus.Close()

	assert.Len(t, handler.events(), 256)
}

func TestBusDrainsOnContextCancel(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	handler := &recordingHandler{name: "audit"}
	bus.Subscribe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	for i := int64(1); i <= 5; i++ {
		bus.Publish(transitionEvent(i))
	}
	cancel()
	bus.Start(ctx)

	// The loop drains what was queued before exiting on the dead context.
	<-bus.done
	assert.Len(t, handler.events(), 5)
}
