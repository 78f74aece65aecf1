package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/darmiel/attrgate/internal/api/middleware"
	"github.com/darmiel/attrgate/internal/api/presenter"
	"github.com/darmiel/attrgate/internal/engine"
)

// ErrInvalidSession is returned if the server rejected the admin session token.
var ErrInvalidSession = errors.New("invalid or expired session, run 'attrgate login'")

// APIError is an error answered by the server. For denied logins Message is the
// text of the error page, i.e. "Access Denied".
type APIError struct {
	StatusCode    int
	CorrelationID string
	Message       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d, correlation ID %s)", e.Message, e.StatusCode, e.CorrelationID)
}

// IsAccessDenied reports whether err is the error page of a denied login.
func IsAccessDenied(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusForbidden &&
		apiErr.Message == engine.AccessDeniedMessage
}

func (c *Client) get(ctx context.Context, url string, result any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, url string, payload, result any) (string, error) {
	req, err := newJSONRequest(ctx, url, payload)
	if err != nil {
		return "", err
	}
	return c.do(req, result)
}

func newJSONRequest(ctx context.Context, url string, payload any) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req and decodes a successful response into result. It returns the
// correlation ID of the response in any case.
func (c *Client) do(req *http.Request, result any) (string, error) {
	if c.authToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	correlation := resp.Header.Get(middleware.CorrelationIDHeader)
	if resp.StatusCode >= http.StatusBadRequest {
		return correlation, decodeError(resp, correlation)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return correlation, fmt.Errorf("decoding response: %w", err)
		}
	}
	return correlation, nil
}

func decodeError(resp *http.Response, correlation string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading error response (status %d): %w", resp.StatusCode, err)
	}

	var errResp presenter.ErrorResponse
	if json.Unmarshal(body, &errResp) != nil || errResp.Error == "" {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode == http.StatusUnauthorized && errResp.Error == "invalid session token" {
		return ErrInvalidSession
	}
	if errResp.CorrelationID != "" {
		correlation = errResp.CorrelationID
	}
	return &APIError{
		StatusCode:    resp.StatusCode,
		CorrelationID: correlation,
		Message:       errResp.Error,
	}
}
