package flow

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
)

// LoginAction is the audit action of events raised during a login flow.
const LoginAction = "login"

var _ core.EventRecorder = (*Event)(nil)

// Event collects the audit event of one execution and hands it to the auditor on Error.
type Event struct {
	auditor core.Auditor
	entry   core.AuditEntry
	user    *core.User
}

func newEvent(auditor core.Auditor, in Input, exec Execution) *Event {
	return &Event{
		auditor: auditor,
		user:    in.User,
		entry: core.AuditEntry{
			ID:            in.CorrelationID,
			Action:        LoginAction,
			ClientID:      in.ClientID,
			Execution:     exec.Alias,
			Authenticator: exec.AuthenticatorID,
		},
	}
}

func (e *Event) User(user *core.User) {
	e.user = user
}

func (e *Event) Error(code string) {
	entry := e.entry
	entry.Time = time.Now()
	entry.User = core.RefOf(e.user)
	entry.Granted = false
	entry.Error = code

	if e.auditor == nil {
		return
	}
	if err := e.auditor.Log(entry); err != nil {
		log.Error().Err(err).
			Str("correlation_id", entry.ID).
			Str("error_code", code).
			Msg("failed to write audit log entry")
	}
}
