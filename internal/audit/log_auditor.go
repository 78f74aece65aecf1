package audit

import (
	"github.com/rs/zerolog"

	"github.com/darmiel/attrgate/internal/core"
)

var _ core.Auditor = (*LogAuditor)(nil)

// LogAuditor emits audit entries as structured log lines on a dedicated logger.
type LogAuditor struct {
	logger zerolog.Logger
}

func NewLogAuditor(logger zerolog.Logger) *LogAuditor {
	return &LogAuditor{logger: logger.With().Str("component", "audit").Logger()}
}

func (l *LogAuditor) Log(entry core.AuditEntry) error {
	ev := l.logger.Info()
	if !entry.Granted {
		ev = l.logger.Warn()
	}
	ev = ev.
		Str("correlation_id", entry.ID).
		Time("time", entry.Time).
		Str("action", entry.Action).
		Str("client_id", entry.ClientID).
		Str("execution", entry.Execution).
		Str("authenticator", entry.Authenticator).
		Bool("granted", entry.Granted)
	if entry.User != nil {
		ev = ev.Str("user_id", entry.User.ID).Str("username", entry.User.Username)
	}
	if entry.Error != "" {
		ev = ev.Str("error", entry.Error)
	}
	if len(entry.Details) > 0 {
		details := zerolog.Dict()
		for k, v := range entry.Details {
			details = details.Str(k, v)
		}
		ev = ev.Dict("details", details)
	}
	ev.Msg("audit.event")
	return nil
}

func (l *LogAuditor) Close() error {
	return nil
}
