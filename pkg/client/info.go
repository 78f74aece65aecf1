package client

import (
	"context"

	"github.com/darmiel/attrgate/internal/api"
	"github.com/darmiel/attrgate/internal/buildinfo"
)

func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.url().setPath(api.AboutRoute).build(), &info)
	return &info, correlation, err
}

// Authenticators lists the authenticator factories known to the server.
func (c *Client) Authenticators(ctx context.Context) ([]api.AuthenticatorInfo, string, error) {
	var res []api.AuthenticatorInfo
	correlation, err := c.get(ctx, c.url().setPath(api.AuthenticatorsRoute).build(), &res)
	return res, correlation, err
}
