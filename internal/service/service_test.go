package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/attrgate/internal/audit"
	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/directory"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/flow"
	"github.com/darmiel/attrgate/internal/issuers"
	"github.com/darmiel/attrgate/internal/metrics"
)

type fixture struct {
	service *LoginService
	auditor *audit.InMemoryAuditor
}

func newFixture(t *testing.T, executions ...engine.ExecutionDefinition) fixture {
	t.Helper()

	registry, err := issuers.BuildRegistry(context.Background(), []config.IssuerConfig{{
		Name: "dev",
		Type: "static",
		Config: map[string]any{"tokens": map[string]any{
			"alice-token":   "alice",
			"bob-token":     "bob",
			"mallory-token": "mallory",
		}},
	}})
	require.NoError(t, err)

	dir := directory.NewInMemoryDirectory(&core.Directory{
		Clients: []core.Client{{ClientID: "billing"}, {ClientID: "attrgate-admin"}},
		Roles: []core.Role{
			{Name: "accountant", Client: "billing", Attributes: core.Attributes{"billing:login": {"yes"}}},
		},
		Groups: []core.Group{
			{Name: "admins", Path: "/admins", Attributes: core.Attributes{"attrgate-admin:login": {"yes"}}},
		},
		Users: []core.User{
			{ID: "1", Username: "alice", Roles: []string{"billing/accountant"}, Groups: []string{"admins"}},
			{ID: "2", Username: "bob", Attributes: core.Attributes{"billing:login": {"blocked"}}, Roles: []string{"billing/accountant"}},
		},
	})

	if len(executions) == 0 {
		executions = []engine.ExecutionDefinition{{
			Alias:         "gate",
			Authenticator: engine.RequireAttributeID,
			Requirement:   core.RequirementRequired,
			Config:        core.DefaultConfig(engine.NewRequireAttributeFactory().ConfigProperties()),
		}}
	}
	flows, err := engine.NewManager(engine.DefaultRegistry(), engine.FlowDefinition{Alias: "browser", Executions: executions})
	require.NoError(t, err)

	auditor := audit.NewInMemoryAuditor(0)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	return fixture{
		service: NewLoginService(registry, dir, flows, auditor, m),
		auditor: auditor,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr), "expected HTTPError, got %v", err)
	return httpErr.StatusCode
}

func TestAuthenticate_Granted(t *testing.T) {
	fx := newFixture(t)
	ctx := context.WithValue(context.Background(), "correlation_id", "req-1")

	resp, err := fx.service.Authenticate(ctx, LoginRequest{Token: "alice-token", ClientID: "billing"})
	require.NoError(t, err)

	assert.True(t, resp.Granted())
	assert.Equal(t, flow.StatusSuccess, resp.Status)
	assert.Equal(t, "alice", resp.User.Username)

	entries, _ := fx.auditor.GetRecent(0)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Granted)
	assert.Equal(t, "req-1", entries[0].ID)
}

func TestAuthenticate_Denied(t *testing.T) {
	fx := newFixture(t)
	ctx := context.WithValue(context.Background(), "correlation_id", "req-2")

	// bob's own attribute takes precedence over the role that would allow him
	resp, err := fx.service.Authenticate(ctx, LoginRequest{Token: "bob-token", ClientID: "billing"})
	require.NoError(t, err)

	assert.False(t, resp.Granted())
	assert.Equal(t, core.FlowErrorInvalidUser, resp.Result.Error)
	require.NotNil(t, resp.Result.Page)
	assert.Equal(t, http.StatusForbidden, resp.Result.Page.Status)
	assert.Equal(t, "Access Denied", resp.Result.Page.Message)

	entries, _ := fx.auditor.GetRecent(0)
	require.Len(t, entries, 1, "exactly one event per denied attempt")
	assert.Equal(t, core.ErrorNotAllowed, entries[0].Error)
	assert.Equal(t, "bob", entries[0].User.Username)
	assert.Equal(t, "billing", entries[0].ClientID)
	assert.Equal(t, "gate", entries[0].Execution)
	assert.Equal(t, "req-2", entries[0].ID)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name       string
		req        LoginRequest
		wantStatus int
		wantCode   string
	}{
		{"Missing client", LoginRequest{Token: "alice-token"}, http.StatusBadRequest, ""},
		{"Unknown token", LoginRequest{Token: "nope", ClientID: "billing"}, http.StatusUnauthorized, core.ErrorInvalidToken},
		{"Unknown issuer", LoginRequest{Token: "alice-token", Issuer: "github", ClientID: "billing"}, http.StatusBadRequest, core.ErrorInvalidToken},
		{"Unknown user", LoginRequest{Token: "mallory-token", ClientID: "billing"}, http.StatusUnauthorized, core.ErrorUserNotFound},
		{"Unknown client", LoginRequest{Token: "alice-token", ClientID: "crm"}, http.StatusBadRequest, core.ErrorClientNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)

			resp, err := fx.service.Authenticate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.wantStatus, statusOf(t, err))

			entries, _ := fx.auditor.GetRecent(0)
			if tt.wantCode == "" {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantCode, entries[0].Error)
			assert.False(t, entries[0].Granted)
		})
	}
}

func TestExplain(t *testing.T) {
	disabled := engine.ExecutionDefinition{
		Alias:         "legacy",
		Authenticator: engine.RequireAttributeID,
		Requirement:   core.RequirementDisabled,
	}
	gate := engine.ExecutionDefinition{
		Alias:         "gate",
		Authenticator: engine.RequireAttributeID,
		Requirement:   core.RequirementRequired,
		Config:        core.DefaultConfig(engine.NewRequireAttributeFactory().ConfigProperties()),
	}
	fx := newFixture(t, disabled, gate)

	trace, err := fx.service.Explain(context.Background(), ExplainRequest{Username: "bob", ClientID: "billing"})
	require.NoError(t, err)

	assert.False(t, trace.FinalDecision)
	assert.Equal(t, "gate", trace.DeniedBy)
	require.Len(t, trace.Executions, 2)

	assert.Equal(t, "execution is disabled", trace.Executions[0].Reason)
	assert.Equal(t, core.RequirementDisabled, trace.Executions[0].Requirement)

	et := trace.Executions[1]
	assert.Equal(t, "billing:login", et.ResolvedName)
	assert.False(t, et.Allowed)
	require.Len(t, et.Sources, 3)
	assert.True(t, et.Sources[0].Found)
	assert.Equal(t, "blocked", et.Sources[0].Value)
	assert.False(t, et.Sources[1].Consulted, "role source is not consulted after the user matched")

	entries, _ := fx.auditor.GetRecent(0)
	assert.Empty(t, entries, "explain must not audit")
}

func TestExplain_HaltedFlow(t *testing.T) {
	gate := engine.ExecutionDefinition{
		Alias:         "gate",
		Authenticator: engine.RequireAttributeID,
		Requirement:   core.RequirementRequired,
		Config:        core.DefaultConfig(engine.NewRequireAttributeFactory().ConfigProperties()),
	}
	second := gate
	second.Alias = "second-gate"
	fx := newFixture(t, gate, second)

	trace, err := fx.service.Explain(context.Background(), ExplainRequest{Username: "bob", ClientID: "billing"})
	require.NoError(t, err)
	assert.Equal(t, "gate", trace.DeniedBy)
	require.Len(t, trace.Executions, 2)

	assert.False(t, trace.Executions[0].NotReached)
	assert.NotEmpty(t, trace.Executions[0].Sources)

	after := trace.Executions[1]
	assert.True(t, after.NotReached)
	assert.False(t, after.Allowed)
	assert.Empty(t, after.Sources, "an execution the flow never ran has nothing to trace")
	assert.Contains(t, after.Reason, "'gate'")

	// when the flow passes, every execution ran
	trace, err = fx.service.Explain(context.Background(), ExplainRequest{Username: "alice", ClientID: "billing"})
	require.NoError(t, err)
	require.True(t, trace.FinalDecision)
	for _, et := range trace.Executions {
		assert.False(t, et.NotReached, et.Alias)
		assert.True(t, et.Allowed, et.Alias)
	}
}

func TestExplain_Errors(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Explain(context.Background(), ExplainRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = fx.service.Explain(context.Background(), ExplainRequest{Username: "mallory", ClientID: "billing"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = fx.service.Explain(context.Background(), ExplainRequest{Username: "alice", ClientID: "crm"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestSessionIssuer(t *testing.T) {
	fx := newFixture(t)
	key := []byte("session-key")
	sessions := NewSessionIssuer(fx.service, "attrgate-admin", key, "attrgate", "admin", time.Hour)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	session, resp, err := sessions.Issue(context.Background(), "alice-token", "")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, resp.Granted())
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, "attrgate", claims["iss"])
	assert.Equal(t, []any{"admin"}, claims["roles"])

	// bob is not in the admins group
	session, resp, err = sessions.Issue(context.Background(), "bob-token", "")
	require.NoError(t, err)
	assert.Nil(t, session)
	require.NotNil(t, resp)
	assert.False(t, resp.Granted())
}

func TestSessionIssuer_Disabled(t *testing.T) {
	fx := newFixture(t)
	sessions := NewSessionIssuer(fx.service, "", nil, "attrgate", "admin", 0)

	_, _, err := sessions.Issue(context.Background(), "alice-token", "")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}
