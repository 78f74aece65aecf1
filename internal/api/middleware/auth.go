package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/attrgate/internal/api/presenter"
)

const (
	// AdminRole must be present in the `roles` claim of an admin session token.
	AdminRole = "admin"

	// SessionIssuer is the `iss` claim of admin session tokens.
	SessionIssuer = "attrgate"
)

// SessionClaims are the claims of an admin session token as issued by POST /v1/session.
type SessionClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// BearerToken returns the credential of an `Authorization: Bearer` header, or "".
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// AdminAuth only lets requests through that carry an admin session token signed with signingKey.
// An empty key disables the admin API.
func AdminAuth(signingKey []byte) func(handler http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(SessionIssuer),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return signingKey, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(signingKey) == 0 {
				presenter.Error(w, r, "admin api disabled", http.StatusForbidden)
				return
			}

			raw := BearerToken(r)
			if raw == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			var claims SessionClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				presenter.Error(w, r, "invalid session token", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(claims.Roles, AdminRole) {
				presenter.Error(w, r, "insufficient privileges", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
