package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/audit"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/directory"
	"github.com/darmiel/attrgate/internal/flow"
)

// Tracer is implemented by authenticators that can explain their decision.
type Tracer interface {
	Trace(ec core.EvaluationContext) core.ExecutionTrace
}

// Explain evaluates the active flow for a user and client without auditing it
// and reports how every execution came to its decision.
func (s *LoginService) Explain(ctx context.Context, req ExplainRequest) (*core.EvaluationTrace, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	if req.Username == "" || req.ClientID == "" {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("username and client_id are required"))
	}

	ec, err := s.directory.EvaluationContext(req.Username, req.ClientID)
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		return nil, httpError(http.StatusNotFound, fmt.Errorf("user '%s' not found", req.Username))
	case errors.Is(err, directory.ErrClientNotFound):
		return nil, httpError(http.StatusNotFound, fmt.Errorf("client '%s' not found", req.ClientID))
	case err != nil:
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("directory lookup failed: %w", err))
	}

	trace := TraceFlow(ctx, s.flows.GetFlow(), ec)
	trace.CorrelationID = reqID

	logger.Debug().
		Str("username", req.Username).
		Str("client_id", req.ClientID).
		Bool("final_decision", trace.FinalDecision).
		Msg("explained flow evaluation")
	return trace, nil
}

// TraceFlow runs f against ec with auditing disabled and collects a trace per execution.
func TraceFlow(ctx context.Context, f *flow.Flow, ec core.EvaluationContext) *core.EvaluationTrace {
	result := f.Run(ctx, flow.Input{
		User:     ec.User,
		ClientID: ec.ClientID,
		Roles:    ec.Roles,
		Groups:   ec.Groups,
	}, audit.NewNoopAuditor())

	// executions without an outcome were never run
	outcomes := make(map[string]bool, len(result.Outcomes))
	for _, o := range result.Outcomes {
		outcomes[o.Alias] = o.Succeeded
	}

	trace := &core.EvaluationTrace{
		User:          core.RefOf(ec.User),
		ClientID:      ec.ClientID,
		Executions:    make([]core.ExecutionTrace, 0, len(f.Executions)),
		FinalDecision: result.Succeeded(),
		DeniedBy:      result.FailedExecution,
	}

	for _, exec := range f.Executions {
		var et core.ExecutionTrace
		_, ran := outcomes[exec.Alias]
		switch tracer, ok := exec.Authenticator.(Tracer); {
		case exec.Requirement == core.RequirementDisabled:
			et.Reason = "execution is disabled"
		case !ran:
			et.NotReached = true
			et.Reason = fmt.Sprintf("not reached, flow halted at '%s'", result.FailedExecution)
		case ok:
			et = tracer.Trace(ec)
		default:
			et.Allowed = outcomes[exec.Alias]
		}
		et.Alias = exec.Alias
		et.Authenticator = exec.AuthenticatorID
		et.Requirement = exec.Requirement
		trace.Executions = append(trace.Executions, et)
	}

	return trace
}
