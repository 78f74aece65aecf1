package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/attrgate/internal/api/middleware"
	"github.com/darmiel/attrgate/internal/api/presenter"
	"github.com/darmiel/attrgate/internal/service"
)

type LoginPayload struct {
	// ClientID is the application the user wants to access.
	ClientID string `json:"client_id"`

	// Issuer skips issuer auto-discovery.
	Issuer string `json:"issuer"`
}

// handleLogin runs the authentication flow for the bearer credential and the requested client.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload LoginPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode login request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	token := middleware.BearerToken(r)
	if token == "" {
		logger.Warn().Msg("missing or empty Authorization header")
		presenter.Error(w, r, "missing Authorization header", http.StatusUnauthorized)
		return
	}

	resp, err := s.login.Authenticate(ctx, service.LoginRequest{
		Token:    token,
		Issuer:   payload.Issuer,
		ClientID: payload.ClientID,
	})
	if err != nil {
		presenter.Err(w, r, err, "login failed")
		return
	}
	if !resp.Granted() {
		presenter.Page(w, r, resp.Result.Page)
		return
	}

	presenter.JSON(w, r, resp, http.StatusOK)
}

type SessionPayload struct {
	Issuer string `json:"issuer"`
}

// handleSession exchanges a credential of an admin for an admin session token.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.sessions == nil {
		presenter.Error(w, r, "admin sessions are disabled", http.StatusForbidden)
		return
	}

	var payload SessionPayload
	if err := DecodePayload(r, &payload, true); err != nil {
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	token := middleware.BearerToken(r)
	if token == "" {
		presenter.Error(w, r, "missing Authorization header", http.StatusUnauthorized)
		return
	}

	session, resp, err := s.sessions.Issue(ctx, token, payload.Issuer)
	if err != nil {
		presenter.Err(w, r, err, "session failed")
		return
	}
	if session == nil {
		presenter.Page(w, r, resp.Result.Page)
		return
	}

	presenter.JSON(w, r, session, http.StatusCreated)
}
