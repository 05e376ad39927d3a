package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"fightpool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitReachesSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{})

	bus.Subscribe(EventTypeRoundStarted, func(ctx context.Context, e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		close(done)
	})

	bus.Emit(context.Background(), RoundStartedEvent{RoundID: 7})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, int64(7), received[0].(RoundStartedEvent).RoundID)
}

func TestBus_EmitIgnoresOtherTypes(t *testing.T) {
	bus := NewBus()

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypeRoundEnded, func(ctx context.Context, e Event) {
		called <- struct{}{}
	})

	bus.Emit(context.Background(), WagerPlacedEvent{RoundID: 1})

	select {
	case <-called:
		t.Fatal("handler for a different event type was invoked")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransactionalBus_FlushDeliversInOrder(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)

	var mu sync.Mutex
	var order []EventType
	var wg sync.WaitGroup
	wg.Add(2)

	record := func(ctx context.Context, e Event) {
		mu.Lock()
		order = append(order, e.Type())
		mu.Unlock()
		wg.Done()
	}
	bus.Subscribe(EventTypeWagerPlaced, record)
	bus.Subscribe(EventTypeRoundEnded, record)

	txBus.Publish(WagerPlacedEvent{RoundID: 1, ParticipantID: 2, Fighter: models.FighterA, Amount: 100})
	txBus.Publish(RoundEndedEvent{RoundID: 1, Winner: models.FighterA})

	// nothing reaches the real bus before commit
	mu.Lock()
	assert.Empty(t, order)
	mu.Unlock()

	require.NoError(t, txBus.Flush(context.Background()))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypeRoundStarted, func(ctx context.Context, e Event) {
		called <- struct{}{}
	})

	txBus.Publish(RoundStartedEvent{RoundID: 1})
	txBus.Discard()
	require.NoError(t, txBus.Flush(context.Background()))

	select {
	case <-called:
		t.Fatal("discarded event was emitted")
	case <-time.After(50 * time.Millisecond):
	}
}
