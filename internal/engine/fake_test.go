package engine

import (
	"context"

	"github.com/darmiel/attrgate/internal/core"
)

type recordedEvent struct {
	user *core.User
	code string
}

// fakeEvent records every emitted event together with the user set at the time.
type fakeEvent struct {
	user    *core.User
	emitted []recordedEvent
}

func (e *fakeEvent) User(user *core.User) {
	e.user = user
}

func (e *fakeEvent) Error(code string) {
	e.emitted = append(e.emitted, recordedEvent{user: e.user, code: code})
}

type fakeFlowContext struct {
	ec     core.EvaluationContext
	config map[string]string
	event  *fakeEvent

	successes int
	failures  int
	reason    core.FlowError
	page      *core.ErrorPage
}

func newFakeFlowContext(ec core.EvaluationContext) *fakeFlowContext {
	return &fakeFlowContext{ec: ec, event: &fakeEvent{}}
}

func (f *fakeFlowContext) Context() context.Context               { return context.Background() }
func (f *fakeFlowContext) User() *core.User                       { return f.ec.User }
func (f *fakeFlowContext) ClientID() string                       { return f.ec.ClientID }
func (f *fakeFlowContext) RoleMappings() []core.Role              { return f.ec.Roles }
func (f *fakeFlowContext) Groups() []core.Group                   { return f.ec.Groups }
func (f *fakeFlowContext) AuthenticatorConfig() map[string]string { return f.config }
func (f *fakeFlowContext) Event() core.EventRecorder              { return f.event }

func (f *fakeFlowContext) Success() {
	f.successes++
}

func (f *fakeFlowContext) Failure(reason core.FlowError, page *core.ErrorPage) {
	f.failures++
	f.reason = reason
	f.page = page
}

// allSources is the default configuration with every source enabled.
func allSources(name, value string) map[string]string {
	return map[string]string{
		ConfigAttributeName:  name,
		ConfigAttributeValue: value,
		ConfigSourceUser:     "true",
		ConfigSourceRole:     "true",
		ConfigSourceGroup:    "true",
	}
}

func attrs(kv ...string) core.Attributes {
	a := core.Attributes{}
	for i := 0; i+1 < len(kv); i += 2 {
		a[kv[i]] = append(a[kv[i]], kv[i+1])
	}
	return a
}
