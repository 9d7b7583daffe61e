package events

import (
	"context"
	"sync"

	"courtside/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeUserCreated   EventType = "user_created"
	EventTypeBetCreated    EventType = "bet_created"
	EventTypeBetMatched    EventType = "bet_matched"
	EventTypeBetSettled    EventType = "bet_settled"
	EventTypeBetCancelled  EventType = "bet_cancelled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      decimal.Decimal
	NewBalance      decimal.Decimal
	ChangeAmount    decimal.Decimal
	TransactionType models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance decimal.Decimal
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BetCreatedEvent represents a new pending bet
type BetCreatedEvent struct {
	BetID   int64
	UserID  int64
	BetType models.BetType
	Sport   string
	Stake   decimal.Decimal
}

func (e BetCreatedEvent) Type() EventType {
	return EventTypeBetCreated
}

// BetMatchedEvent represents a bet accepted by a challenger
type BetMatchedEvent struct {
	BetID        int64
	UserID       int64
	ChallengerID int64
}

func (e BetMatchedEvent) Type() EventType {
	return EventTypeBetMatched
}

// BetSettledEvent represents a bet resolved with a winner
type BetSettledEvent struct {
	BetID       int64
	WinnerID    int64
	LoserID     int64
	WinningTeam string
	Payout      decimal.Decimal
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// BetCancelledEvent represents a pending bet cancelled by its creator
type BetCancelledEvent struct {
	BetID  int64
	UserID int64
}

func (e BetCancelledEvent) Type() EventType {
	return EventTypeBetCancelled
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

	// Call handlers asynchronously to avoid blocking
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

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the transaction commits.
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

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the request that produced them, so emit with a
	// background context rather than the (possibly expired) tx context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops all pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
