package issuers

import (
	"context"
	"fmt"
	"sort"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
)

// Registry holds the trusted issuers by name.
type Registry struct {
	issuers map[string]core.Issuer

	// byURL maps the expected `iss` claim to an issuer for auto-discovery.
	byURL map[string]core.Issuer
}

func NewRegistry() *Registry {
	return &Registry{
		issuers: make(map[string]core.Issuer),
		byURL:   make(map[string]core.Issuer),
	}
}

// Add registers iss. If issuerURL is not empty, tokens carrying it as `iss`
// claim are routed to iss when no issuer is requested explicitly.
func (r *Registry) Add(iss core.Issuer, issuerURL string) error {
	if _, exists := r.issuers[iss.Name()]; exists {
		return fmt.Errorf("issuer '%s' registered twice", iss.Name())
	}
	r.issuers[iss.Name()] = iss
	if issuerURL != "" {
		if other, exists := r.byURL[issuerURL]; exists {
			return fmt.Errorf("issuer url '%s' used by '%s' and '%s'", issuerURL, other.Name(), iss.Name())
		}
		r.byURL[issuerURL] = iss
	}
	return nil
}

func (r *Registry) Get(name string) (core.Issuer, bool) {
	iss, ok := r.issuers[name]
	return iss, ok
}

// Names returns the registered issuer names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.issuers))
	for name := range r.issuers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IdentifyIssuer selects the issuer for a token by its unverified `iss` claim.
// If exactly one issuer is registered it is used for opaque tokens.
func (r *Registry) IdentifyIssuer(token string) (core.Issuer, error) {
	issuerURL, err := ExtractIssuerURL(token)
	if err != nil {
		if len(r.issuers) == 1 {
			for _, iss := range r.issuers {
				return iss, nil
			}
		}
		return nil, err
	}
	iss, ok := r.byURL[issuerURL]
	if !ok {
		return nil, fmt.Errorf("no trusted issuer for '%s'", issuerURL)
	}
	return iss, nil
}

func BuildRegistry(ctx context.Context, cfgs []config.IssuerConfig) (*Registry, error) {
	registry := NewRegistry()
	for _, cfg := range cfgs {
		var (
			iss       core.Issuer
			issuerURL string
			err       error
		)
		switch cfg.Type {
		case "static":
			iss, err = NewStatic(cfg)
		case "jwt":
			var j *JWTIssuer
			if j, err = NewJWTIssuer(cfg); err == nil {
				iss, issuerURL = j, j.issuerURL
			}
		case "oidc":
			var o *OIDCIssuer
			if o, err = NewOIDCIssuer(ctx, cfg); err == nil {
				iss, issuerURL = o, o.cfg.IssuerURL
			}
		default:
			return nil, fmt.Errorf("unknown issuer type %q for issuer %q", cfg.Type, cfg.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("building %s issuer %q: %w", cfg.Type, cfg.Name, err)
		}
		if err := registry.Add(iss, issuerURL); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// ExtractIssuerURL extracts the 'iss' claim from a JWT token string without verifying it.
func ExtractIssuerURL(tokenString string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	iss, err := token.Claims.GetIssuer()
	if err != nil {
		return "", fmt.Errorf("invalid 'iss' claim: %w", err)
	}
	if iss == "" {
		return "", fmt.Errorf("token missing 'iss' claim")
	}
	return iss, nil
}

// principalFromClaims builds a principal from `sub` and `preferred_username`.
func principalFromClaims(issuer string, claims map[string]any) (*core.Principal, error) {
	p := &core.Principal{Issuer: issuer, Claims: claims}
	if sub, ok := claims["sub"]; ok {
		s, ok := sub.(string)
		if !ok {
			return nil, fmt.Errorf("invalid 'sub' claim type")
		}
		p.ID = s
	}
	if name, ok := claims["preferred_username"].(string); ok {
		p.Username = name
	}
	if p.LookupKey() == "" {
		return nil, fmt.Errorf("token carries neither 'sub' nor 'preferred_username'")
	}
	return p, nil
}
