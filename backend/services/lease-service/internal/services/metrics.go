package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the lease-service domain counters.
type Metrics struct {
	Signatures           *prometheus.CounterVec
	Activations          prometheus.Counter
	NotificationFailures *prometheus.CounterVec
	LifecycleTransitions *prometheus.CounterVec
}

// NewMetrics registers on reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Signatures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lease_signatures_total",
				Help: "Signatures recorded, by party",
			},
			[]string{"party"},
		),
		Activations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lease_activations_total",
			Help: "Leases moved to ACTIVE by a final signature",
		}),
		NotificationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_dispatch_failures_total",
				Help: "Notification deliveries that failed, by channel",
			},
			[]string{"channel"},
		),
		LifecycleTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lease_lifecycle_transitions_total",
				Help: "Status transitions made by the expiry job",
			},
			[]string{"to"},
		),
	}
	reg.MustRegister(m.Signatures, m.Activations, m.NotificationFailures, m.LifecycleTransitions)
	return m
}
