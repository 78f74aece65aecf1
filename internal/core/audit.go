package core

import "time"

// Error codes attached to audit events.
const (
	ErrorNotAllowed     = "not_allowed"
	ErrorUserNotFound   = "user_not_found"
	ErrorClientNotFound = "client_not_found"
	ErrorInvalidToken   = "invalid_user_credentials"
	ErrorInternal       = "internal_error"
)

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "login")
	Action string `json:"action"`

	// User identifies who attempted to log in, if known
	User *UserRef `json:"user,omitempty"`

	// ClientID of the application the user tried to access
	ClientID string `json:"client_id,omitempty"`

	// Execution and Authenticator that emitted the event
	Execution     string `json:"execution,omitempty"`
	Authenticator string `json:"authenticator,omitempty"`

	Granted bool   `json:"granted"`
	Error   string `json:"error,omitempty"`

	// Details are operator facing and never shown to the end user
	Details map[string]string `json:"details,omitempty"`
}

// UserRef is the part of a user identity recorded in audit events.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func RefOf(user *User) *UserRef {
	if user == nil {
		return nil
	}
	return &UserRef{ID: user.ID, Username: user.Username}
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// QueryableAuditor is an Auditor that keeps entries around for inspection.
type QueryableAuditor interface {
	Auditor
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
