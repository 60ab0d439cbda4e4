package order

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders committed, by platform",
		},
		[]string{"platform"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Order status updates, by target status",
		},
		[]string{"status"},
	)

	stockRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_stock_rejections_total",
			Help: "Orders rejected for insufficient stock",
		},
	)
)

func init() {
	prometheus.MustRegister(ordersCreated, statusTransitions, stockRejections)
}
