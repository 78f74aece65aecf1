package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of admin session tokens if none is configured.
const DefaultSessionTTL = 8 * time.Hour

// SessionIssuer signs admin session tokens for users that pass the flow for the admin client.
type SessionIssuer struct {
	login      *LoginService
	clientID   string
	signingKey []byte
	issuer     string
	role       string
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionIssuer(login *LoginService, clientID string, signingKey []byte, issuer, role string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{
		login:      login,
		clientID:   clientID,
		signingKey: signingKey,
		issuer:     issuer,
		role:       role,
		ttl:        ttl,
		now:        time.Now,
	}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue runs the login flow against the admin client. The returned response is
// non-nil if the flow ran, the session is only set if it succeeded.
func (s *SessionIssuer) Issue(ctx context.Context, token, issuer string) (*Session, *LoginResponse, error) {
	if s.clientID == "" || len(s.signingKey) == 0 {
		return nil, nil, httpError(http.StatusForbidden, fmt.Errorf("admin sessions are disabled"))
	}

	resp, err := s.login.Authenticate(ctx, LoginRequest{
		Token:    token,
		Issuer:   issuer,
		ClientID: s.clientID,
	})
	if err != nil || !resp.Granted() {
		return nil, resp, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   s.issuer,
		"sub":   resp.User.Username,
		"aud":   s.clientID,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"roles": []string{s.role},
	}).SignedString(s.signingKey)
	if err != nil {
		return nil, resp, httpError(http.StatusInternalServerError, fmt.Errorf("signing session token: %w", err))
	}

	return &Session{Token: signed, ExpiresAt: expiresAt}, resp, nil
}
