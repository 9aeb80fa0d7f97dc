package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the flow counters. Each Server owns its registry so tests
// can build servers without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	// KeyExchanges counts outbound key-exchange calls by outcome
	// (success, failure).
	KeyExchanges *prometheus.CounterVec
	// GateDecisions counts silent-login gate verdicts (exempt_route,
	// authenticated, already_attempted, redirect, provider_error,
	// session_error).
	GateDecisions *prometheus.CounterVec
	// CallbackLogins counts callback outcomes (success, provisioned,
	// invalid_token, error).
	CallbackLogins *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		KeyExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simaris",
			Subsystem: "sso",
			Name:      "key_exchanges_total",
			Help:      "Outbound key-exchange calls to the SSO provider by outcome.",
		}, []string{"outcome"}),
		GateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simaris",
			Subsystem: "sso",
			Name:      "gate_decisions_total",
			Help:      "Silent-login gate verdicts by kind.",
		}, []string{"verdict"}),
		CallbackLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simaris",
			Subsystem: "sso",
			Name:      "callback_logins_total",
			Help:      "Federated login callback outcomes.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.KeyExchanges,
		m.GateDecisions,
		m.CallbackLogins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the metrics endpoint for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
