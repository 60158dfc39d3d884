package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart state transitions applied, by operation",
		},
		[]string{"operation"},
	)

	cartPersistErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cart_persist_errors_total",
			Help: "Cart snapshot writes that failed",
		},
	)

	cartRehydrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_rehydrations_total",
			Help: "Cart snapshot reads at session start, by result",
		},
		[]string{"result"},
	)

	eventPublishErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_event_publish_errors_total",
			Help: "Domain events that could not be published",
		},
		[]string{"event"},
	)

	confirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_confirmations_total",
			Help: "Confirmation dialog transitions, by outcome",
		},
		[]string{"outcome"},
	)

	ordersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders that reached the success state",
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)

	sessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_sessions_evicted_total",
			Help: "Sessions dropped after being idle",
		},
	)
)
