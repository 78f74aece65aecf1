package issuers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
)

var ErrUnknownToken = errors.New("unknown token")

type staticConfig struct {
	// Tokens maps opaque tokens to usernames.
	Tokens map[string]string `mapstructure:"tokens"`
}

// StaticIssuer accepts a fixed set of opaque tokens. Meant for development and tests.
type StaticIssuer struct {
	name   string
	tokens map[string]string
}

func NewStatic(cfg config.IssuerConfig) (*StaticIssuer, error) {
	var sc staticConfig
	if err := mapstructure.Decode(cfg.Config, &sc); err != nil {
		return nil, fmt.Errorf("decoding static issuer config: %w", err)
	}
	if sc.Tokens == nil {
		// no tokens means every verification fails
		sc.Tokens = map[string]string{}
	}
	return &StaticIssuer{
		name:   cfg.Name,
		tokens: sc.Tokens,
	}, nil
}

func (s *StaticIssuer) Name() string {
	return s.name
}

func (s *StaticIssuer) Verify(_ context.Context, token string) (*core.Principal, error) {
	username, ok := s.tokens[token]
	if !ok || token == "" {
		return nil, ErrUnknownToken
	}
	return &core.Principal{
		ID:       username,
		Username: username,
		Issuer:   s.name,
	}, nil
}
