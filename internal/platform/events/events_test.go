package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBusDeliversToTypedAndWildcardHandlers(t *testing.T) {
	bus := NewBus(nil, 8)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)
	bus.Subscribe(SwapClaimed, func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, "typed:"+e.SubjectID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	bus.Subscribe(Any, func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, "any:"+e.SubjectID)
		mu.Unlock()
		done <- struct{}{}
		return errors.New("handler failures are logged, not fatal")
	})

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		_ = bus.Run(ctx)
		close(finished)
	}()

	bus.Publish(Event{Type: SwapClaimed, SubjectID: "offer-1"})
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("event was not delivered")
		}
	}
	cancel()
	<-finished

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"typed:offer-1", "any:offer-1"}, got)
	assert.Equal(t, uint64(1), bus.Stats()["eventsHandled"])
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus(nil, 1)
	bus.Publish(Event{Type: LeaveRequested, SubjectID: "a"})
	bus.Publish(Event{Type: LeaveRequested, SubjectID: "b"})
	assert.Equal(t, uint64(1), bus.Stats()["eventsDropped"])
}

func TestRunDrainsOnShutdown(t *testing.T) {
	bus := NewBus(nil, 4)
	var count int
	bus.Subscribe(LeaveResolved, func(context.Context, Event) error {
		count++
		return nil
	})
	bus.Publish(Event{Type: LeaveResolved})
	bus.Publish(Event{Type: LeaveResolved})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Run(ctx))
	assert.Equal(t, 2, count)
}
