package flow

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/darmiel/attrgate/internal/core"
)

// stubAuthenticator reports a fixed outcome and counts how often it ran.
type stubAuthenticator struct {
	outcome  string // "success", "failure" or "" for pending
	needUser bool
	errCode  string
	calls    int
}

func (s *stubAuthenticator) Authenticate(fc core.FlowContext) {
	s.calls++
	if s.errCode != "" {
		fc.Event().Error(s.errCode)
	}
	switch s.outcome {
	case "success":
		fc.Success()
	case "failure":
		fc.Failure(core.FlowErrorInvalidUser, &core.ErrorPage{Status: http.StatusForbidden, Message: "Access Denied"})
		// later calls are ignored
		fc.Success()
	}
}

func (s *stubAuthenticator) Action(core.FlowContext)       {}
func (s *stubAuthenticator) RequiresUser() bool            { return s.needUser }
func (s *stubAuthenticator) ConfiguredFor(*core.User) bool { return true }

type recordingAuditor struct {
	entries []core.AuditEntry
}

func (r *recordingAuditor) Log(entry core.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditor) Close() error { return nil }

func exec(alias string, requirement core.Requirement, a core.Authenticator) Execution {
	return Execution{
		Alias:           alias,
		AuthenticatorID: "stub",
		Requirement:     requirement,
		Authenticator:   a,
		Config:          map[string]string{},
	}
}

func TestFlow_Run(t *testing.T) {
	user := &core.User{ID: "1", Username: "alice"}

	tests := []struct {
		name         string
		executions   func() []Execution
		user         *core.User
		wantStatus   Status
		wantError    core.FlowError
		wantFailed   string
		wantExecuted []string
		wantOutcomes []Outcome
	}{
		{
			name: "All required succeed",
			executions: func() []Execution {
				return []Execution{
					exec("a", core.RequirementRequired, &stubAuthenticator{outcome: "success"}),
					exec("b", core.RequirementRequired, &stubAuthenticator{outcome: "success"}),
				}
			},
			user:         user,
			wantStatus:   StatusSuccess,
			wantExecuted: []string{"a", "b"},
			wantOutcomes: []Outcome{
				{Alias: "a", AuthenticatorID: "stub", Succeeded: true},
				{Alias: "b", AuthenticatorID: "stub", Succeeded: true},
			},
		},
		{
			name: "Disabled execution is skipped",
			executions: func() []Execution {
				return []Execution{
					exec("off", core.RequirementDisabled, &stubAuthenticator{outcome: "failure"}),
					exec("on", core.RequirementRequired, &stubAuthenticator{outcome: "success"}),
				}
			},
			user:         user,
			wantStatus:   StatusSuccess,
			wantExecuted: []string{"on"},
			wantOutcomes: []Outcome{{Alias: "on", AuthenticatorID: "stub", Succeeded: true}},
		},
		{
			name: "Required failure halts the flow",
			executions: func() []Execution {
				return []Execution{
					exec("gate", core.RequirementRequired, &stubAuthenticator{outcome: "failure"}),
					exec("after", core.RequirementRequired, &stubAuthenticator{outcome: "success"}),
				}
			},
			user:         user,
			wantStatus:   StatusFailed,
			wantError:    core.FlowErrorInvalidUser,
			wantFailed:   "gate",
			wantExecuted: []string{"gate"},
			wantOutcomes: []Outcome{{Alias: "gate", AuthenticatorID: "stub", Succeeded: false}},
		},
		{
			name: "Optional failure is ignored",
			executions: func() []Execution {
				return []Execution{
					exec("opt", core.RequirementOptional, &stubAuthenticator{outcome: "failure"}),
					exec("gate", core.RequirementRequired, &stubAuthenticator{outcome: "success"}),
				}
			},
			user:         user,
			wantStatus:   StatusSuccess,
			wantExecuted: []string{"opt", "gate"},
			wantOutcomes: []Outcome{
				{Alias: "opt", AuthenticatorID: "stub", Succeeded: false},
				{Alias: "gate", AuthenticatorID: "stub", Succeeded: true},
			},
		},
		{
			name: "Pending authenticator is an internal error",
			executions: func() []Execution {
				return []Execution{exec("silent", core.RequirementRequired, &stubAuthenticator{})}
			},
			user:         user,
			wantStatus:   StatusFailed,
			wantError:    core.FlowErrorInternalError,
			wantFailed:   "silent",
			wantExecuted: []string{"silent"},
			wantOutcomes: []Outcome{{Alias: "silent", AuthenticatorID: "stub", Succeeded: false}},
		},
		{
			name: "Missing user fails before the authenticator runs",
			executions: func() []Execution {
				return []Execution{exec("gate", core.RequirementRequired, &stubAuthenticator{outcome: "success", needUser: true})}
			},
			user:         nil,
			wantStatus:   StatusFailed,
			wantError:    core.FlowErrorInternalError,
			wantFailed:   "gate",
			wantExecuted: []string{"gate"},
			wantOutcomes: []Outcome{{Alias: "gate", AuthenticatorID: "stub", Succeeded: false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Flow{Alias: "browser", Executions: tt.executions()}
			res := f.Run(context.Background(), Input{User: tt.user, ClientID: "app"}, nil)

			if res.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", res.Status, tt.wantStatus)
			}
			if res.Error != tt.wantError {
				t.Errorf("Error = %s, want %s", res.Error, tt.wantError)
			}
			if res.FailedExecution != tt.wantFailed {
				t.Errorf("FailedExecution = %s, want %s", res.FailedExecution, tt.wantFailed)
			}
			if !reflect.DeepEqual(res.Executed, tt.wantExecuted) {
				t.Errorf("Executed = %v, want %v", res.Executed, tt.wantExecuted)
			}
			if !reflect.DeepEqual(res.Outcomes, tt.wantOutcomes) {
				t.Errorf("Outcomes = %+v, want %+v", res.Outcomes, tt.wantOutcomes)
			}
			if tt.wantStatus == StatusFailed && res.Page == nil {
				t.Error("expected an error page for a failed flow")
			}
		})
	}
}

func TestFlow_Run_DisabledNotCalled(t *testing.T) {
	disabled := &stubAuthenticator{outcome: "success"}
	f := &Flow{Executions: []Execution{exec("off", core.RequirementDisabled, disabled)}}

	f.Run(context.Background(), Input{User: &core.User{Username: "alice"}}, nil)

	if disabled.calls != 0 {
		t.Errorf("disabled authenticator ran %d times", disabled.calls)
	}
}

func TestFlow_Run_AuditEvent(t *testing.T) {
	auditor := &recordingAuditor{}
	user := &core.User{ID: "42", Username: "alice"}
	f := &Flow{Executions: []Execution{
		exec("gate", core.RequirementRequired, &stubAuthenticator{outcome: "failure", errCode: core.ErrorNotAllowed}),
	}}

	res := f.Run(context.Background(), Input{CorrelationID: "corr", User: user, ClientID: "billing"}, auditor)

	if res.Page == nil || res.Page.Status != http.StatusForbidden || res.Page.Message != "Access Denied" {
		t.Errorf("Page = %+v, want 403 Access Denied", res.Page)
	}
	if len(auditor.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(auditor.entries))
	}
	e := auditor.entries[0]
	if e.ID != "corr" || e.Action != LoginAction || e.ClientID != "billing" || e.Execution != "gate" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Error != core.ErrorNotAllowed || e.Granted {
		t.Errorf("Error = %s, Granted = %v", e.Error, e.Granted)
	}
	if e.User == nil || e.User.Username != "alice" || e.User.ID != "42" {
		t.Errorf("User = %+v", e.User)
	}
}

func TestAttempt_ConfigIsCopied(t *testing.T) {
	config := map[string]string{"k": "v"}
	a := newAttempt(context.Background(), Input{}, Execution{Config: config}, nil)

	got := a.AuthenticatorConfig()
	got["k"] = "changed"

	if config["k"] != "v" {
		t.Error("authenticator config was modified through the attempt")
	}
}
