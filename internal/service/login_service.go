package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/directory"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/flow"
	"github.com/darmiel/attrgate/internal/issuers"
	"github.com/darmiel/attrgate/internal/metrics"
)

// Directory is the part of the identity directory a login needs.
type Directory interface {
	EvaluationContext(userKey, clientID string) (core.EvaluationContext, error)
}

// LoginService identifies the user of a login attempt and runs the authentication flow.
type LoginService struct {
	issuers   *issuers.Registry
	directory Directory
	flows     *engine.FlowManager
	auditor   core.Auditor
	metrics   *metrics.Metrics
}

func NewLoginService(
	issuers *issuers.Registry,
	directory Directory,
	flows *engine.FlowManager,
	auditor core.Auditor,
	metrics *metrics.Metrics,
) *LoginService {
	return &LoginService{
		issuers:   issuers,
		directory: directory,
		flows:     flows,
		auditor:   auditor,
		metrics:   metrics,
	}
}

func (s *LoginService) Authenticate(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	if req.ClientID == "" {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("client_id is required"))
	}

	auditEntry := core.AuditEntry{
		ID:       reqID,
		Action:   flow.LoginAction,
		ClientID: req.ClientID,
	}

	var issuer core.Issuer
	if req.Issuer != "" {
		var ok bool
		if issuer, ok = s.issuers.Get(req.Issuer); !ok {
			s.audit(ctx, auditEntry, core.ErrorInvalidToken, "requested issuer not found")
			return nil, httpError(http.StatusBadRequest,
				fmt.Errorf("requested issuer '%s' not found", req.Issuer))
		}
		logger.Debug().Str("issuer", issuer.Name()).Msg("using explicit issuer")
	} else {
		var err error
		if issuer, err = s.issuers.IdentifyIssuer(req.Token); err != nil {
			s.audit(ctx, auditEntry, core.ErrorInvalidToken, err.Error())
			return nil, httpError(http.StatusUnauthorized,
				fmt.Errorf("issuer auto-discovery failed: %w", err))
		}
		logger.Debug().Str("issuer", issuer.Name()).Msg("using discovered issuer")
	}

	principal, err := issuer.Verify(ctx, req.Token)
	if err != nil {
		s.audit(ctx, auditEntry, core.ErrorInvalidToken, err.Error())
		return nil, httpError(http.StatusUnauthorized, fmt.Errorf("verification failed: %w", err))
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("sub", principal.ID).Str("client_id", req.ClientID)
	})

	ec, err := s.directory.EvaluationContext(principal.LookupKey(), req.ClientID)
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		auditEntry.User = &core.UserRef{ID: principal.ID, Username: principal.Username}
		s.audit(ctx, auditEntry, core.ErrorUserNotFound, "")
		return nil, httpError(http.StatusUnauthorized,
			fmt.Errorf("user '%s' not found", principal.LookupKey()))
	case errors.Is(err, directory.ErrClientNotFound):
		auditEntry.User = core.RefOf(ec.User)
		s.audit(ctx, auditEntry, core.ErrorClientNotFound, "")
		return nil, httpError(http.StatusBadRequest,
			fmt.Errorf("client '%s' not found", req.ClientID))
	case err != nil:
		s.audit(ctx, auditEntry, core.ErrorInternal, err.Error())
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("directory lookup failed: %w", err))
	}

	f := s.flows.GetFlow()
	result := f.Run(ctx, flow.Input{
		CorrelationID: reqID,
		User:          ec.User,
		ClientID:      ec.ClientID,
		Roles:         ec.Roles,
		Groups:        ec.Groups,
	}, s.auditor)

	for _, o := range result.Outcomes {
		s.metrics.RecordDecision(o.AuthenticatorID, o.Succeeded)
	}
	s.metrics.RecordLogin(string(result.Status))

	if result.Succeeded() {
		auditEntry.User = core.RefOf(ec.User)
		auditEntry.Granted = true
		auditEntry.Time = time.Now()
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for login")
		}
		logger.Info().Str("flow", f.Alias).Msg("login granted")
	} else {
		// the failing authenticator has already raised its audit event
		logger.Info().
			Str("flow", f.Alias).
			Str("execution", result.FailedExecution).
			Str("flow_error", string(result.Error)).
			Msg("login denied")
	}

	return &LoginResponse{
		Status:   result.Status,
		User:     core.RefOf(ec.User),
		ClientID: ec.ClientID,
		Result:   result,
	}, nil
}

// audit records a failure that happened before the flow could run.
func (s *LoginService) audit(ctx context.Context, entry core.AuditEntry, code, detail string) {
	entry.Time = time.Now()
	entry.Error = code
	if detail != "" {
		entry.Details = map[string]string{"reason": detail}
	}
	s.metrics.RecordLogin(string(flow.StatusFailed))
	if err := s.auditor.Log(entry); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("error_code", code).Msg("failed to write audit log entry")
	}
}
