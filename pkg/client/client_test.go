package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/attrgate/internal/api"
	"github.com/darmiel/attrgate/internal/api/middleware"
	"github.com/darmiel/attrgate/internal/api/presenter"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/flow"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(middleware.CorrelationIDHeader, "corr-1")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.LoginRoute, func(w http.ResponseWriter, r *http.Request) {
		var payload api.LoginPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)

		switch r.Header.Get("Authorization") {
		case "Bearer alice-token":
			writeJSON(w, http.StatusOK, map[string]any{
				"status":    flow.StatusSuccess,
				"user":      map[string]any{"username": "alice"},
				"client_id": payload.ClientID,
			})
		default:
			writeJSON(w, http.StatusForbidden, presenter.ErrorResponse{
				Error:         engine.AccessDeniedMessage,
				CorrelationID: "corr-1",
			})
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cli := New(srv.URL)

	resp, correlation, err := cli.Login(context.Background(), "alice-token", "billing", LoginOptions{})
	require.NoError(t, err)
	assert.Equal(t, "corr-1", correlation)
	assert.Equal(t, flow.StatusSuccess, resp.Status)
	assert.Equal(t, "billing", resp.ClientID)

	_, correlation, err = cli.Login(context.Background(), "bob-token", "billing", LoginOptions{})
	require.Error(t, err)
	assert.Equal(t, "corr-1", correlation)
	assert.True(t, IsAccessDenied(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestListAudits_SendsFilters(t *testing.T) {
	var query map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+api.ListAuditsRoute, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session", r.Header.Get("Authorization"))
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, http.StatusOK, []core.AuditEntry{{ID: "a", ClientID: "billing"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	entries, _, err := New(srv.URL, WithAuthToken("session")).ListAudits(context.Background(), ListAuditsOpts{
		Limit:  5,
		Error:  core.ErrorNotAllowed,
		Filter: `client_id == "billing"`,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]string{
		"limit":  "5",
		"error":  core.ErrorNotAllowed,
		"filter": `client_id == "billing"`,
	}, query)
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "Invalid session",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid session token","correlation_id":"x"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidSession)
			},
		},
		{
			name:   "Other API error",
			status: http.StatusNotFound,
			body:   `{"error":"no task registered as 'x'","correlation_id":"x"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "x", apiErr.CorrelationID)
				assert.False(t, IsAccessDenied(err))
			},
		},
		{
			name:   "Not JSON",
			status: http.StatusBadGateway,
			body:   `upstream down`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "upstream down")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, _, err := New(srv.URL).ListAudits(context.Background(), ListAuditsOpts{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
