// Package metrics exports membership counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every membership counter.
type Metrics struct {
	StatusTransitions *prometheus.CounterVec
	AuthorityDenials  *prometheus.CounterVec
	Promotions        *prometheus.CounterVec
	GuestGateDenials  prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
}

// New registers the counters on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StatusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_transitions_total",
				Help:      "Account status transitions applied",
			},
			[]string{"from", "to"},
		),
		AuthorityDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authority_denials_total",
				Help:      "Mutations refused by the role authority",
			},
			[]string{"code"},
		),
		Promotions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "promotions_total",
				Help:      "Guest promotions committed, by eligibility at promotion time",
			},
			[]string{"eligible"},
		),
		GuestGateDenials: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guest_gate_denials_total",
				Help:      "Requests refused by the guest access gate",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// NewNop returns counters registered on a private registry, for tests and
// callers that do not export metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry(), "membership")
}

func (m *Metrics) ObserveTransition(from, to string) {
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveDenial(code string) {
	m.AuthorityDenials.WithLabelValues(code).Inc()
}

func (m *Metrics) ObservePromotion(eligible bool) {
	m.Promotions.WithLabelValues(strconv.FormatBool(eligible)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
