package events

import (
	"context"
	"sync"
	"time"

	"fightpool/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRoundStarted EventType = "round_started"
	EventTypeRoundEnded   EventType = "round_ended"
	EventTypeWagerPlaced  EventType = "wager_placed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RoundStartedEvent is emitted exactly once when a round opens for betting
type RoundStartedEvent struct {
	RoundID       int64
	StartTime     time.Time
	BettingEndsAt time.Time
}

func (e RoundStartedEvent) Type() EventType {
	return EventTypeRoundStarted
}

// RoundEndedEvent is emitted exactly once when a round settles
type RoundEndedEvent struct {
	RoundID int64
	Winner  models.Fighter
}

func (e RoundEndedEvent) Type() EventType {
	return EventTypeRoundEnded
}

// WagerPlacedEvent is emitted when a participant's wager is recorded
type WagerPlacedEvent struct {
	RoundID       int64
	ParticipantID int64
	Fighter       models.Fighter
	Amount        int64
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Handlers run asynchronously so a slow consumer cannot block the
	// operation that produced the event.
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events produced inside a unit of work and flushes
// them to the real bus only after the surrounding transaction commits. This
// is what keeps RoundStarted/RoundEnded exactly-once: an aborted operation
// discards its pending events, a committed one flushes them in order.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events, called after a successful commit. Events
// are emitted on a background context so they outlive the transaction.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.Background()

	for _, ev := range b.pending {
		log.WithFields(log.Fields{
			"eventType": ev.Type(),
		}).Debug("Flushing committed event")
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events, called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
