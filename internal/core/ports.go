package core

import "context"

// Issuer is responsible for verifying the credential of a login attempt.
// Implementations: static tokens, HMAC JWTs, OIDC.
type Issuer interface {
	// Name returns the identifier of this issuer (as used in config).
	Name() string

	// Verify takes a raw token string, validates it, and returns a Principal.
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Authenticator is a single step of an authentication flow.
type Authenticator interface {
	// Authenticate runs the step and reports the outcome on the flow context.
	Authenticate(fc FlowContext)

	// Action handles a form submission of an interactive step.
	Action(fc FlowContext)

	// RequiresUser reports whether the flow must have identified a user before this step.
	RequiresUser() bool

	// ConfiguredFor reports whether the step can run for the given user.
	ConfiguredFor(user *User) bool
}

// AuthenticatorFactory describes an authenticator type and creates configured instances of it.
type AuthenticatorFactory interface {
	ID() string
	DisplayType() string
	ReferenceCategory() string
	HelpText() string

	IsConfigurable() bool
	IsUserSetupAllowed() bool
	RequirementChoices() []Requirement

	// ConfigProperties describes the configuration schema, in display order.
	ConfigProperties() []ConfigProperty

	// Create builds an authenticator bound to the given raw configuration.
	// It must not fail: malformed values fall back to safe defaults.
	Create(raw map[string]string) Authenticator
}
