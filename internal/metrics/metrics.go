package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "attrgate"

// Metrics holds the Prometheus collectors of the flow host.
type Metrics struct {
	decisionsTotal   *prometheus.CounterVec
	loginsTotal      *prometheus.CounterVec
	auditEventsTotal *prometheus.CounterVec
	directorySyncs   *prometheus.CounterVec
}

// New registers the collectors with prometheus.DefaultRegisterer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer is useful for tests where a private registry is preferred.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "execution_decisions_total",
			Help:      "Outcome of executed authenticators",
		}, []string{"authenticator", "outcome"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "logins_total",
			Help:      "Login attempts by final status",
		}, []string{"status"}),
		auditEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "events_total",
			Help:      "Audit events emitted by error code",
		}, []string{"error"}),
		directorySyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "syncs_total",
			Help:      "Directory source synchronisations by result",
		}, []string{"result"}),
	}

	if registerer != nil {
		m.decisionsTotal = register(registerer, m.decisionsTotal)
		m.loginsTotal = register(registerer, m.loginsTotal)
		m.auditEventsTotal = register(registerer, m.auditEventsTotal)
		m.directorySyncs = register(registerer, m.directorySyncs)
	}

	return m
}

// register returns the already registered collector if one with the same name exists.
func register(registerer prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) RecordDecision(authenticator string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.decisionsTotal.WithLabelValues(authenticator, outcome).Inc()
}

func (m *Metrics) RecordLogin(status string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAuditEvent(code string) {
	if m == nil {
		return
	}
	m.auditEventsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordDirectorySync(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.directorySyncs.WithLabelValues(result).Inc()
}
