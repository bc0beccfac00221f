package events

import (
	"context"
	"sync"

	"akari/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePointsChange       EventType = "points_change"
	EventTypeUserCreated        EventType = "user_created"
	EventTypeTierChanged        EventType = "tier_changed"
	EventTypePredictionResolved EventType = "prediction_resolved"
	EventTypeRewardClaimed      EventType = "reward_claimed"
	EventTypeCampaignActivated  EventType = "campaign_activated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PointsChangeEvent represents a points or MYST balance change that occurred
type PointsChangeEvent struct {
	TelegramID      int64
	Currency        models.Currency
	OldBalance      float64
	NewBalance      float64
	TransactionType models.TransactionType
	ChangeAmount    float64
}

func (e PointsChangeEvent) Type() EventType {
	return EventTypePointsChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	TelegramID    int64
	Username      string
	InitialPoints float64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// TierChangedEvent represents a user crossing a tier threshold
type TierChangedEvent struct {
	TelegramID int64
	OldTier    models.Tier
	NewTier    models.Tier
	Points     float64
}

func (e TierChangedEvent) Type() EventType {
	return EventTypeTierChanged
}

// PredictionResolvedEvent represents a prediction that was settled
type PredictionResolvedEvent struct {
	PredictionID    int64
	WinningOptionID int64
	ResolverID      int64
	TotalPot        int64
	HouseFee        int64
	WinnerCount     int
}

func (e PredictionResolvedEvent) Type() EventType {
	return EventTypePredictionResolved
}

// RewardClaimedEvent represents a reward claim with its MYST burn
type RewardClaimedEvent struct {
	RewardID   int64
	TelegramID int64
	BurnedMyst float64
}

func (e RewardClaimedEvent) Type() EventType {
	return EventTypeRewardClaimed
}

// CampaignActivatedEvent represents a campaign transitioning to active
type CampaignActivatedEvent struct {
	CampaignID int64
	CreatorID  int64
	Title      string
}

func (e CampaignActivatedEvent) Type() EventType {
	return EventTypeCampaignActivated
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

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
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

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission so handlers outlive
	// the transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
