package core

import (
	"context"
	"fmt"
	"strings"
)

// Requirement controls how the flow treats the outcome of an execution.
type Requirement string

const (
	RequirementRequired    Requirement = "REQUIRED"
	RequirementAlternative Requirement = "ALTERNATIVE"
	RequirementOptional    Requirement = "OPTIONAL"
	RequirementDisabled    Requirement = "DISABLED"
)

func (r Requirement) IsValid() bool {
	switch r {
	case RequirementRequired, RequirementAlternative, RequirementOptional, RequirementDisabled:
		return true
	default:
		return false
	}
}

// ParseRequirement parses a requirement case-insensitively.
func ParseRequirement(s string) (Requirement, error) {
	r := Requirement(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown requirement '%s'", s)
	}
	return r, nil
}

// FlowError is the reason an authenticator reports when it halts the flow.
type FlowError string

const (
	FlowErrorInvalidUser   FlowError = "INVALID_USER"
	FlowErrorInternalError FlowError = "INTERNAL_ERROR"
)

// ErrorPage is what the end user gets to see when the flow fails.
type ErrorPage struct {
	Status  int    `json:"status"`
	Message string `json:"error"`
}

// EventRecorder collects the audit event of the current attempt.
type EventRecorder interface {
	// User attaches the user identity to the event.
	User(user *User)

	// Error emits the event with the given error code.
	Error(code string)
}

// FlowContext is what the flow host hands to an authenticator for a single attempt.
type FlowContext interface {
	// Context carries request scoped values like the logger and correlation ID.
	Context() context.Context

	User() *User
	ClientID() string
	RoleMappings() []Role
	Groups() []Group

	// AuthenticatorConfig returns the raw configuration of the current execution.
	AuthenticatorConfig() map[string]string

	// Event returns the audit event recorder of this attempt.
	Event() EventRecorder

	// Success advances the flow.
	Success()

	// Failure halts the flow and renders the given error page.
	Failure(reason FlowError, page *ErrorPage)
}
