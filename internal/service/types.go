package service

import (
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/flow"
)

type LoginRequest struct {
	// Token is the raw credential presented by the user.
	Token string

	// Issuer is optional. If empty, auto-discovery is attempted.
	Issuer string

	// ClientID is the application the user wants to access.
	ClientID string
}

type LoginResponse struct {
	Status   flow.Status   `json:"status"`
	User     *core.UserRef `json:"user"`
	ClientID string        `json:"client_id"`

	// Result is the outcome of the flow. Result.Page is what the user gets to see on failure.
	Result flow.Result `json:"-"`
}

// Granted reports whether the flow let the user through.
func (r *LoginResponse) Granted() bool {
	return r.Result.Succeeded()
}

type ExplainRequest struct {
	// Username (or user ID) to evaluate.
	Username string `json:"username"`
	ClientID string `json:"client_id"`
}
