package audit

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/metrics"
)

// Instrumented counts every logged entry before handing it to the wrapped auditor.
type Instrumented struct {
	core.Auditor
	metrics *metrics.Metrics
}

func NewInstrumented(inner core.Auditor, m *metrics.Metrics) *Instrumented {
	return &Instrumented{Auditor: inner, metrics: m}
}

func (i *Instrumented) Log(entry core.AuditEntry) error {
	code := entry.Error
	if code == "" {
		code = "none"
	}
	i.metrics.RecordAuditEvent(code)
	return i.Auditor.Log(entry)
}

// Queryable returns the wrapped auditor if it can be queried.
func (i *Instrumented) Queryable() (core.QueryableAuditor, bool) {
	q, ok := i.Auditor.(core.QueryableAuditor)
	return q, ok
}

// New builds the auditor for the given type.
// Disabled auditing results in a NoopAuditor.
func New(enabled bool, typ string, capacity int) (core.Auditor, error) {
	if !enabled {
		return NewNoopAuditor(), nil
	}
	switch typ {
	case "", "memory":
		return NewInMemoryAuditor(capacity), nil
	case "log":
		return NewLogAuditor(log.Logger), nil
	case "noop":
		return NewNoopAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", typ)
	}
}
