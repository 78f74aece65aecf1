package client

import (
	"context"

	"github.com/darmiel/attrgate/internal/api"
	"github.com/darmiel/attrgate/internal/service"
)

// LoginOptions contains optional parameters of a login.
type LoginOptions struct {
	// Issuer skips issuer auto-discovery on the server.
	Issuer string
}

// Login runs the authentication flow of the server for token and clientID.
// A denied login results in an APIError carrying the error page message.
func (c *Client) Login(ctx context.Context, token, clientID string, opts LoginOptions) (*service.LoginResponse, string, error) {
	req, err := newJSONRequest(ctx, c.url().setPath(api.LoginRoute).build(), api.LoginPayload{
		ClientID: clientID,
		Issuer:   opts.Issuer,
	})
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp service.LoginResponse
	correlation, err := c.do(req, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// Session exchanges the credential of an admin for an admin session token.
func (c *Client) Session(ctx context.Context, token string, opts LoginOptions) (*service.Session, string, error) {
	req, err := newJSONRequest(ctx, c.url().setPath(api.SessionRoute).build(), api.SessionPayload{
		Issuer: opts.Issuer,
	})
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var session service.Session
	correlation, err := c.do(req, &session)
	if err != nil {
		return nil, correlation, err
	}
	return &session, correlation, nil
}
