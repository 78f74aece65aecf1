package flow

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
)

// Execution is a configured authenticator at a fixed position of a flow.
type Execution struct {
	Alias           string
	AuthenticatorID string
	Requirement     core.Requirement
	Authenticator   core.Authenticator

	// Config is the raw configuration the authenticator was created from.
	Config map[string]string
}

// Flow is an ordered list of executions. It is immutable once built.
type Flow struct {
	Alias      string
	Executions []Execution
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the outcome of running a flow for a single attempt.
type Result struct {
	Status Status `json:"status"`

	// Executed lists the aliases of executions that ran, in order.
	Executed []string `json:"executed"`

	// Outcomes holds one entry per executed authenticator, in order.
	Outcomes []Outcome `json:"outcomes"`

	// FailedExecution, Error and Page are set if Status is StatusFailed.
	FailedExecution string          `json:"failed_execution,omitempty"`
	Error           core.FlowError  `json:"flow_error,omitempty"`
	Page            *core.ErrorPage `json:"page,omitempty"`
}

func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Outcome records whether a single execution let the attempt pass.
type Outcome struct {
	Alias           string `json:"alias"`
	AuthenticatorID string `json:"authenticator"`
	Succeeded       bool   `json:"succeeded"`
}

// Input is everything the flow host knows about the attempt.
type Input struct {
	CorrelationID string
	User          *core.User
	ClientID      string
	Roles         []core.Role
	Groups        []core.Group
}

// Run executes the flow for a single attempt. Audit events raised by authenticators
// are forwarded to auditor.
func (f *Flow) Run(ctx context.Context, in Input, auditor core.Auditor) Result {
	logger := log.Ctx(ctx).With().Str("flow", f.Alias).Logger()
	ctx = logger.WithContext(ctx)

	result := Result{
		Status:   StatusSuccess,
		Executed: make([]string, 0, len(f.Executions)),
		Outcomes: make([]Outcome, 0, len(f.Executions)),
	}

	for _, exec := range f.Executions {
		if exec.Requirement == core.RequirementDisabled {
			logger.Debug().Str("execution", exec.Alias).Msg("skipping disabled execution")
			continue
		}

		execLogger := logger.With().
			Str("execution", exec.Alias).
			Str("authenticator", exec.AuthenticatorID).
			Logger()
		result.Executed = append(result.Executed, exec.Alias)

		if exec.Authenticator.RequiresUser() && in.User == nil {
			execLogger.Error().Msg("execution requires a user but none has been identified")
			result.record(exec, false)
			result.fail(exec.Alias, core.FlowErrorInternalError, internalErrorPage())
			return result
		}

		attempt := newAttempt(execLogger.WithContext(ctx), in, exec, newEvent(auditor, in, exec))
		exec.Authenticator.Authenticate(attempt)

		switch attempt.status {
		case attemptSucceeded:
			execLogger.Debug().Msg("execution succeeded")
			result.record(exec, true)
			continue
		case attemptPending:
			execLogger.Error().Msg("authenticator reported neither success nor failure")
			attempt.status = attemptFailed
			attempt.flowError = core.FlowErrorInternalError
			attempt.page = internalErrorPage()
		}
		result.record(exec, false)

		if exec.Requirement != core.RequirementRequired {
			execLogger.Debug().
				Str("requirement", string(exec.Requirement)).
				Str("flow_error", string(attempt.flowError)).
				Msg("ignoring failure of non-required execution")
			continue
		}

		execLogger.Info().Str("flow_error", string(attempt.flowError)).Msg("execution failed, halting flow")
		result.fail(exec.Alias, attempt.flowError, attempt.page)
		return result
	}

	return result
}

func (r *Result) record(exec Execution, succeeded bool) {
	r.Outcomes = append(r.Outcomes, Outcome{
		Alias:           exec.Alias,
		AuthenticatorID: exec.AuthenticatorID,
		Succeeded:       succeeded,
	})
}

func (r *Result) fail(alias string, reason core.FlowError, page *core.ErrorPage) {
	r.Status = StatusFailed
	r.FailedExecution = alias
	r.Error = reason
	r.Page = page
}

func internalErrorPage() *core.ErrorPage {
	return &core.ErrorPage{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}
