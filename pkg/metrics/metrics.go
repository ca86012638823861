package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry aggregates the counters the order/inventory core exposes.
type Registry struct {
	webhookProcessed  *prometheus.CounterVec
	ordersPaid        prometheus.Counter
	inventoryShortage *prometheus.CounterVec
}

// New registers the platform metrics on the provided registerer.
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		return &Registry{}
	}
	webhookProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_webhook_events_total",
		Help: "Gateway webhook events by outcome.",
	}, []string{"outcome"})
	ordersPaid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Orders transitioned from pending to paid.",
	})
	inventoryShortage := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_shortfall_total",
		Help: "Packaged-stock shortfalls recorded by the reconciler.",
	}, []string{"spice"})
	reg.MustRegister(webhookProcessed, ordersPaid, inventoryShortage)
	return &Registry{
		webhookProcessed:  webhookProcessed,
		ordersPaid:        ordersPaid,
		inventoryShortage: inventoryShortage,
	}
}

// IncWebhook counts one processed webhook event by outcome
// (applied, skipped, error).
func (r *Registry) IncWebhook(outcome string) {
	if r == nil || r.webhookProcessed == nil {
		return
	}
	r.webhookProcessed.WithLabelValues(outcome).Inc()
}

// IncOrderPaid counts one pending-to-paid transition.
func (r *Registry) IncOrderPaid() {
	if r == nil || r.ordersPaid == nil {
		return
	}
	r.ordersPaid.Inc()
}

// IncShortfall counts one packaged-stock shortfall for the named spice.
func (r *Registry) IncShortfall(spice string) {
	if r == nil || r.inventoryShortage == nil {
		return
	}
	r.inventoryShortage.WithLabelValues(spice).Inc()
}
