package issuers

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/attrgate/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestStaticIssuer(t *testing.T) {
	iss, err := NewStatic(config.IssuerConfig{
		Name:   "dev",
		Type:   "static",
		Config: map[string]any{"tokens": map[string]any{"alice-token": "alice"}},
	})
	require.NoError(t, err)

	p, err := iss.Verify(context.Background(), "alice-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.LookupKey())
	assert.Equal(t, "dev", p.Issuer)

	_, err = iss.Verify(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnknownToken)

	_, err = iss.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestJWTIssuer(t *testing.T) {
	iss, err := NewJWTIssuer(config.IssuerConfig{
		Name: "internal",
		Type: "jwt",
		Config: map[string]any{
			"issuer_url": "https://idp.example.com",
			"audience":   "attrgate",
			"secret":     testSecret,
		},
	})
	require.NoError(t, err)

	valid := jwt.MapClaims{
		"iss":                "https://idp.example.com",
		"aud":                "attrgate",
		"sub":                "u-1",
		"preferred_username": "alice",
		"exp":                time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name    string
		mutate  func(c jwt.MapClaims)
		wantErr bool
	}{
		{"Valid", func(jwt.MapClaims) {}, false},
		{"Expired", func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }, true},
		{"Missing expiration", func(c jwt.MapClaims) { delete(c, "exp") }, true},
		{"Wrong issuer", func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }, true},
		{"Wrong audience", func(c jwt.MapClaims) { c["aud"] = "other" }, true},
		{"No subject", func(c jwt.MapClaims) { delete(c, "sub"); delete(c, "preferred_username") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			for k, v := range valid {
				claims[k] = v
			}
			tt.mutate(claims)

			p, err := iss.Verify(context.Background(), signed(t, claims))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", p.LookupKey())
			assert.Equal(t, "u-1", p.ID)
		})
	}
}

func TestJWTIssuer_RejectsOtherSecret(t *testing.T) {
	iss, err := NewJWTIssuer(config.IssuerConfig{Name: "internal", Config: map[string]any{"secret": "another-secret"}})
	require.NoError(t, err)

	_, err = iss.Verify(context.Background(), signed(t, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Error(t, err)
}

func TestNewJWTIssuer_MissingSecret(t *testing.T) {
	_, err := NewJWTIssuer(config.IssuerConfig{Name: "internal", Config: map[string]any{}})
	assert.Error(t, err)
}

func TestRegistry_IdentifyIssuer(t *testing.T) {
	registry, err := BuildRegistry(context.Background(), []config.IssuerConfig{
		{Name: "dev", Type: "static", Config: map[string]any{"tokens": map[string]any{"t": "alice"}}},
		{Name: "internal", Type: "jwt", Config: map[string]any{"issuer_url": "https://idp.example.com", "secret": testSecret}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "internal"}, registry.Names())

	iss, err := registry.IdentifyIssuer(signed(t, jwt.MapClaims{"iss": "https://idp.example.com"}))
	require.NoError(t, err)
	assert.Equal(t, "internal", iss.Name())

	_, err = registry.IdentifyIssuer(signed(t, jwt.MapClaims{"iss": "https://unknown.example.com"}))
	assert.Error(t, err)

	// opaque tokens are ambiguous with more than one issuer
	_, err = registry.IdentifyIssuer("t")
	assert.Error(t, err)
}

func TestRegistry_SingleIssuerFallback(t *testing.T) {
	registry, err := BuildRegistry(context.Background(), []config.IssuerConfig{
		{Name: "dev", Type: "static", Config: map[string]any{"tokens": map[string]any{"t": "alice"}}},
	})
	require.NoError(t, err)

	iss, err := registry.IdentifyIssuer("t")
	require.NoError(t, err)
	assert.Equal(t, "dev", iss.Name())
}

func TestBuildRegistry_Errors(t *testing.T) {
	_, err := BuildRegistry(context.Background(), []config.IssuerConfig{{Name: "x", Type: "saml"}})
	assert.Error(t, err)

	_, err = BuildRegistry(context.Background(), []config.IssuerConfig{
		{Name: "dev", Type: "static"},
		{Name: "dev", Type: "static"},
	})
	assert.Error(t, err)
}
