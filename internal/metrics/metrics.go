package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Purchases     *prometheus.CounterVec   // storefront_purchases_total{outcome}
	Notifications *prometheus.CounterVec   // storefront_payment_notifications_total{outcome}
	Allocations   *prometheus.CounterVec   // storefront_stock_allocations_total{sku,result}
	Duration      *prometheus.HistogramVec // storefront_workflow_duration_seconds{operation}
}

// New registers the storefront collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Purchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_purchases_total",
				Help: "Purchase attempts by outcome.",
			},
			[]string{"outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_payment_notifications_total",
				Help: "Payment webhook notifications by outcome.",
			},
			[]string{"outcome"},
		),
		Allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_stock_allocations_total",
				Help: "Stock take attempts per SKU.",
			},
			[]string{"sku", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_workflow_duration_seconds",
				Help:    "Duration of workflow operations in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Purchases, m.Notifications, m.Allocations, m.Duration)
	}
	return m
}

// Nop returns collectors that are not registered anywhere.
func Nop() *Metrics { return New(nil) }
