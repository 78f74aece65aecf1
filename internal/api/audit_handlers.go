package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/api/presenter"
	"github.com/darmiel/attrgate/internal/audit"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/service"
)

const defaultAuditLimit = 50

// auditQuery holds the query parameters of GET /v1/admin/audit.
type auditQuery struct {
	limit       int
	correlation string
	username    string
	clientID    string
	errorCode   string
	expression  string
}

func parseAuditQuery(values url.Values) (auditQuery, error) {
	q := auditQuery{
		limit:       defaultAuditLimit,
		correlation: values.Get("correlation_id"),
		username:    values.Get("username"),
		clientID:    values.Get("client_id"),
		errorCode:   values.Get("error"),
		expression:  values.Get("filter"),
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("invalid limit parameter '%s'", raw)
		}
		q.limit = limit
	}
	return q, nil
}

func (q auditQuery) filtered() bool {
	return q.correlation != "" || q.username != "" || q.clientID != "" || q.errorCode != "" || q.expression != ""
}

// matches applies the plain field filters. Empty fields match everything.
func (q auditQuery) matches(entry core.AuditEntry) bool {
	username := ""
	if entry.User != nil {
		username = entry.User.Username
	}
	for _, check := range [][2]string{
		{q.correlation, entry.ID},
		{q.username, username},
		{q.clientID, entry.ClientID},
		{q.errorCode, entry.Error},
	} {
		if check[0] != "" && check[0] != check[1] {
			return false
		}
	}
	return true
}

// handleAdminAudit lists recorded login decisions, newest last.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if s.auditor == nil {
		presenter.Error(w, r, "audit log is not queryable", http.StatusNotImplemented)
		return
	}

	q, err := parseAuditQuery(r.URL.Query())
	if err != nil {
		presenter.Error(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	expression, err := audit.CompileFilter(q.expression)
	if err != nil {
		presenter.Error(w, r, "invalid filter: "+err.Error(), http.StatusBadRequest)
		return
	}

	var entries []core.AuditEntry
	if q.filtered() {
		logger.Debug().Str("filter", q.expression).Msg("searching audit log")
		entries, err = s.auditor.Find(audit.And(expression, q.matches), q.limit)
	} else {
		entries, err = s.auditor.GetRecent(q.limit)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}

// handleExplain reports how the flow decides for a user and client.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.ExplainRequest
	if err := DecodePayload(r, &req, false); err != nil {
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	trace, err := s.login.Explain(ctx, req)
	if err != nil {
		presenter.Err(w, r, err, "explain failed")
		return
	}

	presenter.JSON(w, r, trace, http.StatusOK)
}
