package metrics

import (
	"context"

	"courtside/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts API requests by method, route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courtside_http_requests_total",
		Help: "API requests by method, route and status code",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks API request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "courtside_http_request_duration_seconds",
		Help:    "API request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	betsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtside_bets_created_total",
		Help: "Bets opened by creators",
	})

	betsMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtside_bets_matched_total",
		Help: "Bets accepted by challengers",
	})

	betsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtside_bets_settled_total",
		Help: "Bets settled with a winner",
	})

	tokensPaidOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtside_tokens_paid_out_total",
		Help: "Total tokens credited to winners",
	})
)

// RegisterEventRecorders subscribes counters to the domain event bus so
// lifecycle metrics track committed transactions only.
func RegisterEventRecorders(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetCreated, func(ctx context.Context, e events.Event) {
		betsCreated.Inc()
	})
	bus.Subscribe(events.EventTypeBetMatched, func(ctx context.Context, e events.Event) {
		betsMatched.Inc()
	})
	bus.Subscribe(events.EventTypeBetSettled, func(ctx context.Context, e events.Event) {
		betsSettled.Inc()
		if settled, ok := e.(events.BetSettledEvent); ok {
			payout, _ := settled.Payout.Float64()
			tokensPaidOut.Add(payout)
		}
	})
}
