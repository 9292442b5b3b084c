// Package backendapi is the typed client for the offboarding backend.
//
// The console owns no business logic: account lookup, revocation, audit
// persistence and export jobs all live behind these endpoints. Every call
// takes a context and returns typed errors so callers can distinguish
// unauthorized, not-found, pending-artifact and transport failures.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 1 << 20 // 1 MiB
	userAgent        = "offboarding-console"
)

// Client talks to the offboarding backend. Authenticated endpoints are reached
// through a token-bound view, see WithToken.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("backend base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend base URL: %w", err)
	}
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) ensureClient() error {
	if c.BaseURL == "" {
		return errors.New("backend base URL is required")
	}
	if c.HTTP == nil {
		return errors.New("backend http client is not configured")
	}
	return nil
}

// WithToken returns a view of the client that attaches the bearer token to
// every request. This is the only path to the authenticated endpoints, so
// token attachment cannot be forgotten per call site.
func (c *Client) WithToken(token string) *Bound {
	return &Bound{c: c, token: strings.TrimSpace(token)}
}

// Bound is a Client bound to one session's bearer token.
type Bound struct {
	c     *Client
	token string
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	u.Fragment = ""
	return u.String(), nil
}

// resolve turns a possibly relative URL (as returned in download_url) into an
// absolute one against the backend base.
func (c *Client) resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func (b *Bound) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (int, []byte, error) {
	if err := b.c.ensureClient(); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, payload, nil
}

func (b *Bound) getJSON(ctx context.Context, endpoint string, out any) error {
	status, body, err := b.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newAPIError(status, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backend response: %w", err)
	}
	return nil
}

func (b *Bound) postJSON(ctx context.Context, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	status, payload, err := b.do(ctx, http.MethodPost, endpoint, body, "application/json")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newAPIError(status, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("backend response: %w", err)
	}
	return nil
}
