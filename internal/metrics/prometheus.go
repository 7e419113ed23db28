package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Saga outcome counters, exposed on /metrics.
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders successfully created",
	})

	OrderOperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_operation_failures_total",
		Help: "Total number of failed order operations by operation and reason",
	}, []string{"operation", "reason"})

	InventoryReservations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_total",
		Help: "Total number of successful inventory reservations",
	})

	InventoryReleases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_releases_total",
		Help: "Total number of successful inventory releases",
	})

	CompensatingReleases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compensating_releases_total",
		Help: "Total number of compensating releases issued after a failed reservation",
	})
)
