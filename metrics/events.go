package metrics

import (
	"context"

	"akari/events"
	"akari/models"
)

// EventCollector subscribes to bus events and records business metrics
type EventCollector struct{}

// NewEventCollector creates a new event metrics collector
func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Register subscribes to all event types the collector tracks
func (c *EventCollector) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypePointsChange, c.handlePointsChange)
	bus.Subscribe(events.EventTypePredictionResolved, c.handlePredictionResolved)
	bus.Subscribe(events.EventTypeRewardClaimed, c.handleRewardClaimed)
	bus.Subscribe(events.EventTypeTierChanged, c.handleTierChanged)
}

func (c *EventCollector) handlePointsChange(ctx context.Context, event events.Event) {
	e, ok := event.(events.PointsChangeEvent)
	if !ok {
		return
	}

	switch e.TransactionType {
	case models.TransactionTypePredictionStake:
		BetsPlaced.Inc()
		// PointsStaked tracks the points pool; MYST stakes only count as bets
		if e.Currency == models.CurrencyPoints {
			PointsStaked.Add(-e.ChangeAmount)
		}
	case models.TransactionTypeTaskReward:
		TaskCompletions.Inc()
	}
}

func (c *EventCollector) handlePredictionResolved(ctx context.Context, event events.Event) {
	e, ok := event.(events.PredictionResolvedEvent)
	if !ok {
		return
	}

	PredictionsResolved.Inc()
	HouseFeesRetained.Add(float64(e.HouseFee))
}

func (c *EventCollector) handleRewardClaimed(ctx context.Context, event events.Event) {
	e, ok := event.(events.RewardClaimedEvent)
	if !ok {
		return
	}

	RewardsClaimed.Inc()
	MystBurned.Add(e.BurnedMyst)
}

func (c *EventCollector) handleTierChanged(ctx context.Context, event events.Event) {
	e, ok := event.(events.TierChangedEvent)
	if !ok {
		return
	}

	TierChanges.WithLabelValues(string(e.NewTier)).Inc()
}
