package flow

import (
	"context"
	"maps"

	"github.com/darmiel/attrgate/internal/core"
)

type attemptStatus int

const (
	attemptPending attemptStatus = iota
	attemptSucceeded
	attemptFailed
)

var _ core.FlowContext = (*Attempt)(nil)

// Attempt is the flow context handed to a single execution.
type Attempt struct {
	ctx    context.Context
	in     Input
	config map[string]string
	event  *Event

	status    attemptStatus
	flowError core.FlowError
	page      *core.ErrorPage
}

func newAttempt(ctx context.Context, in Input, exec Execution, event *Event) *Attempt {
	return &Attempt{
		ctx:    ctx,
		in:     in,
		config: exec.Config,
		event:  event,
	}
}

func (a *Attempt) Context() context.Context {
	return a.ctx
}

func (a *Attempt) User() *core.User {
	return a.in.User
}

func (a *Attempt) ClientID() string {
	return a.in.ClientID
}

func (a *Attempt) RoleMappings() []core.Role {
	return a.in.Roles
}

func (a *Attempt) Groups() []core.Group {
	return a.in.Groups
}

// AuthenticatorConfig returns a copy, authenticators must not change the shared config.
func (a *Attempt) AuthenticatorConfig() map[string]string {
	return maps.Clone(a.config)
}

func (a *Attempt) Event() core.EventRecorder {
	return a.event
}

func (a *Attempt) Success() {
	if a.status != attemptPending {
		return
	}
	a.status = attemptSucceeded
}

func (a *Attempt) Failure(reason core.FlowError, page *core.ErrorPage) {
	if a.status != attemptPending {
		return
	}
	a.status = attemptFailed
	a.flowError = reason
	a.page = page
}
