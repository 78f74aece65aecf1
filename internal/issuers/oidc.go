package issuers

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
)

type oidcConfig struct {
	IssuerURL string `mapstructure:"issuer_url"`
	ClientID  string `mapstructure:"client_id"`
}

// OIDCIssuer verifies ID tokens of an OpenID Connect provider.
// Discovery happens on the first verification and is retried until it succeeds,
// so an unreachable provider does not keep the server from starting.
type OIDCIssuer struct {
	name string
	cfg  oidcConfig

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func NewOIDCIssuer(_ context.Context, cfg config.IssuerConfig) (*OIDCIssuer, error) {
	var oc oidcConfig
	if err := mapstructure.Decode(cfg.Config, &oc); err != nil {
		return nil, fmt.Errorf("decoding oidc issuer config: %w", err)
	}
	for key, value := range map[string]string{"issuer_url": oc.IssuerURL, "client_id": oc.ClientID} {
		if value == "" {
			return nil, fmt.Errorf("oidc issuer '%s' missing '%s'", cfg.Name, key)
		}
	}
	return &OIDCIssuer{name: cfg.Name, cfg: oc}, nil
}

func (o *OIDCIssuer) Name() string {
	return o.name
}

func (o *OIDCIssuer) discover(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.verifier == nil {
		provider, err := oidc.NewProvider(ctx, o.cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("discovering oidc provider %s: %w", o.cfg.IssuerURL, err)
		}
		o.verifier = provider.Verifier(&oidc.Config{ClientID: o.cfg.ClientID})
	}
	return o.verifier, nil
}

func (o *OIDCIssuer) Verify(ctx context.Context, token string) (*core.Principal, error) {
	verifier, err := o.discover(ctx)
	if err != nil {
		return nil, err
	}
	idToken, err := verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("oidc verification failed: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extracting oidc claims: %w", err)
	}
	return principalFromClaims(o.name, claims)
}
