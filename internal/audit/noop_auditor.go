package audit

import "github.com/darmiel/attrgate/internal/core"

var _ core.Auditor = (*NoopAuditor)(nil)

// NoopAuditor drops every entry.
type NoopAuditor struct{}

func NewNoopAuditor() *NoopAuditor {
	return &NoopAuditor{}
}

func (n *NoopAuditor) Log(_ core.AuditEntry) error {
	return nil
}

func (n *NoopAuditor) Close() error {
	return nil
}
