package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeToSeveralTypes(t *testing.T) {
	bus := NewBus(8, zerolog.Nop())
	defer bus.Shutdown()

	received := make(chan Event, 4)
	bus.Subscribe(func(ctx context.Context, e Event) error {
		received <- e
		return nil
	}, "draft.updated", "draft.deleted")

	bus.Publish(Event{Type: "draft.updated", Key: "d1", Data: 42})
	bus.Publish(Event{Type: "draft.created", Key: "d1"})
	bus.Publish(Event{Type: "draft.deleted", Key: "d1"})

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case e := <-received:
			assert.Equal(t, "d1", e.Key)
			assert.False(t, e.Timestamp.IsZero())
			got = append(got, e.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	assert.Equal(t, []string{"draft.updated", "draft.deleted"}, got, "delivered in publish order")
}

func TestBus_HandlerFailuresDoNotStopDelivery(t *testing.T) {
	bus := NewBus(4, zerolog.Nop())
	defer bus.Shutdown()

	var mu sync.Mutex
	var keys []string
	bus.Subscribe(func(ctx context.Context, e Event) error {
		if e.Key == "panics" {
			panic("boom")
		}
		return errors.New("relay unavailable")
	}, "draft.updated")
	bus.Subscribe(func(ctx context.Context, e Event) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, e.Key)
		return nil
	}, "draft.updated")

	bus.Publish(Event{Type: "draft.updated", Key: "panics"})
	bus.Publish(Event{Type: "draft.updated", Key: "d2"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(keys) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestBus_ShutdownDrainsQueuedEvents(t *testing.T) {
	bus := NewBus(8, zerolog.Nop())

	release := make(chan struct{})
	var mu sync.Mutex
	var keys []string
	bus.Subscribe(func(ctx context.Context, e Event) error {
		<-release
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, e.Key)
		return nil
	}, "draft.deleted")

	for _, k := range []string{"a", "b", "c"} {
		bus.Publish(Event{Type: "draft.deleted", Key: k})
	}
	close(release)
	bus.Shutdown()

	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Zero(t, bus.Dropped())
}

func TestBus_DropsWhenFullOrClosed(t *testing.T) {
	bus := NewBus(1, zerolog.Nop())

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.Subscribe(func(ctx context.Context, e Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	}, "draft.updated")

	bus.Publish(Event{Type: "draft.updated", Key: "running"})
	<-started
	bus.Publish(Event{Type: "draft.updated", Key: "queued"})
	bus.Publish(Event{Type: "draft.updated", Key: "dropped"})
	assert.Equal(t, uint64(1), bus.Dropped())

	close(block)
	bus.Shutdown()

	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: "draft.updated"})
	})
	assert.Equal(t, uint64(2), bus.Dropped())
}
