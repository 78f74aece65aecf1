package issuers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/attrgate/internal/config"
)

// fakeProvider serves discovery and JWKS for a single RSA key.
func fakeProvider(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	b64 := base64.RawURLEncoding.EncodeToString
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                srv.URL,
			"jwks_uri":                              srv.URL + "/keys",
			"authorization_endpoint":                srv.URL + "/auth",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /keys", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]any{{
				"kty": "RSA",
				"kid": "k1",
				"alg": "RS256",
				"use": "sig",
				"n":   b64(key.N.Bytes()),
				"e":   b64(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	})
	return srv
}

func TestOIDCIssuer_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := fakeProvider(t, key)

	iss, err := NewOIDCIssuer(context.Background(), config.IssuerConfig{
		Name:   "corp",
		Type:   "oidc",
		Config: map[string]any{"issuer_url": srv.URL, "client_id": "attrgate"},
	})
	require.NoError(t, err)

	sign := func(claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		token.Header["kid"] = "k1"
		s, err := token.SignedString(key)
		require.NoError(t, err)
		return s
	}

	p, err := iss.Verify(context.Background(), sign(jwt.MapClaims{
		"iss":                srv.URL,
		"aud":                "attrgate",
		"sub":                "u-1",
		"preferred_username": "alice",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iat":                time.Now().Unix(),
	}))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.LookupKey())
	assert.Equal(t, "corp", p.Issuer)

	_, err = iss.Verify(context.Background(), sign(jwt.MapClaims{
		"iss": srv.URL,
		"aud": "someone-else",
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Error(t, err)
}

func TestOIDCIssuer_DiscoveryIsLazy(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	// construction does not contact the provider
	iss, err := NewOIDCIssuer(context.Background(), config.IssuerConfig{
		Name:   "corp",
		Config: map[string]any{"issuer_url": srv.URL, "client_id": "attrgate"},
	})
	require.NoError(t, err)

	_, err = iss.Verify(context.Background(), "whatever")
	assert.ErrorContains(t, err, "discovering oidc provider")
}

func TestNewOIDCIssuer_MissingFields(t *testing.T) {
	_, err := NewOIDCIssuer(context.Background(), config.IssuerConfig{
		Name:   "corp",
		Config: map[string]any{"issuer_url": "https://idp.example.com"},
	})
	assert.ErrorContains(t, err, "client_id")
}

func TestBuildRegistry_OIDCByIssuerClaim(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := fakeProvider(t, key)

	registry, err := BuildRegistry(context.Background(), []config.IssuerConfig{
		{Name: "internal", Type: "jwt", Config: map[string]any{"issuer_url": "https://idp.example.com", "secret": testSecret}},
		{Name: "corp", Type: "oidc", Config: map[string]any{"issuer_url": srv.URL, "client_id": "attrgate"}},
	})
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":                srv.URL,
		"aud":                "attrgate",
		"sub":                "u-1",
		"preferred_username": "alice",
		"exp":                time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "k1"
	raw, err := token.SignedString(key)
	require.NoError(t, err)

	iss, err := registry.IdentifyIssuer(raw)
	require.NoError(t, err)
	assert.Equal(t, "corp", iss.Name())

	p, err := iss.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.LookupKey())
}
