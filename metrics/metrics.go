package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the land registry chaincode.
type Metrics struct {
	TransactionsStarted   *prometheus.CounterVec
	TransactionsSucceeded *prometheus.CounterVec
	EventsEmitted         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_transactions_started_total",
			Help: "Transaction functions invoked on the chaincode",
		}, []string{"function"}),
		TransactionsSucceeded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_transactions_succeeded_total",
			Help: "Transaction functions that returned without error",
		}, []string{"function"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landregistry_events_emitted_total",
			Help: "Ledger events recorded by committed operations",
		}, []string{"event"}),
	}
}

// ObserveStarted counts an invocation of function.
func (m *Metrics) ObserveStarted(function string) {
	if m == nil {
		return
	}
	m.TransactionsStarted.WithLabelValues(function).Inc()
}

// ObserveSucceeded counts a successful return from function.
func (m *Metrics) ObserveSucceeded(function string) {
	if m == nil {
		return
	}
	m.TransactionsSucceeded.WithLabelValues(function).Inc()
}

// ObserveEvent counts one recorded ledger event.
func (m *Metrics) ObserveEvent(name string) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(name).Inc()
}
