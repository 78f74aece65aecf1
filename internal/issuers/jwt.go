package issuers

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
)

type jwtConfig struct {
	IssuerURL string `mapstructure:"issuer_url"`
	Audience  string `mapstructure:"audience"`
	Secret    string `mapstructure:"secret"`
}

// JWTIssuer verifies HMAC signed JWTs with a shared secret.
type JWTIssuer struct {
	name      string
	issuerURL string
	audience  string
	secret    []byte
}

func NewJWTIssuer(cfg config.IssuerConfig) (*JWTIssuer, error) {
	var jc jwtConfig
	if err := mapstructure.Decode(cfg.Config, &jc); err != nil {
		return nil, fmt.Errorf("decoding jwt issuer config: %w", err)
	}
	if jc.Secret == "" {
		return nil, fmt.Errorf("jwt issuer '%s' missing 'secret'", cfg.Name)
	}
	return &JWTIssuer{
		name:      cfg.Name,
		issuerURL: jc.IssuerURL,
		audience:  jc.Audience,
		secret:    []byte(jc.Secret),
	}, nil
}

func (j *JWTIssuer) Name() string {
	return j.name
}

func (j *JWTIssuer) Verify(_ context.Context, tokenString string) (*core.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if j.issuerURL != "" {
		opts = append(opts, jwt.WithIssuer(j.issuerURL))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("jwt verification failed: %w", err)
	}

	return principalFromClaims(j.name, claims)
}
