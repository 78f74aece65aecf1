package client

import (
	"context"

	"github.com/darmiel/attrgate/internal/api"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/service"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Username      string
	ClientID      string
	Error         string

	// Filter is an expression evaluated on the server, e.g. `error == "not_allowed"`.
	Filter string
}

// ListAudits retrieves the latest audit entries from the server.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Username != "" {
		ub = ub.addQueryParam("username", opts.Username)
	}
	if opts.ClientID != "" {
		ub = ub.addQueryParam("client_id", opts.ClientID)
	}
	if opts.Error != "" {
		ub = ub.addQueryParam("error", opts.Error)
	}
	if opts.Filter != "" {
		ub = ub.addQueryParam("filter", opts.Filter)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}

// Explain asks the server how its flow decides for a user and client.
func (c *Client) Explain(ctx context.Context, username, clientID string) (*core.EvaluationTrace, string, error) {
	var trace core.EvaluationTrace
	correlation, err := c.post(ctx, c.url().setPath(api.ExplainRoute).build(), service.ExplainRequest{
		Username: username,
		ClientID: clientID,
	}, &trace)
	return &trace, correlation, err
}
