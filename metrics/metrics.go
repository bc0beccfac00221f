package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Business Metrics
var (
	BetsPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bets_placed_total",
			Help: "Total number of prediction bets placed",
		},
	)

	PointsStaked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_staked_total",
			Help: "Total points staked on predictions",
		},
	)

	PredictionsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "predictions_resolved_total",
			Help: "Total number of predictions settled",
		},
	)

	HouseFeesRetained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "house_fees_retained_total",
			Help: "Total points retained as house fees",
		},
	)

	MystBurned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "myst_burned_total",
			Help: "Total MYST burned through reward claims",
		},
	)

	RewardsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_claimed_total",
			Help: "Total number of reward claims",
		},
	)

	TaskCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "task_completions_total",
			Help: "Total number of campaign task completions",
		},
	)

	TierChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tier_changes_total",
			Help: "Total number of tier transitions",
		},
		[]string{"tier"},
	)
)
