package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Credentials are the operator's backend login.
type Credentials struct {
	Username string
	Password string
}

// Account is the backend's view of the authenticated operator.
type Account struct {
	UserRole int `json:"userRole"`
}

// AdminRole is the backend role value that unlocks the audit surfaces.
const AdminRole = 1

// IsAdmin reports whether the account may use the audit log and export screens.
func (a Account) IsAdmin() bool {
	return a.UserRole == AdminRole
}

// Login exchanges credentials for a bearer token at POST /token.
// A 401 maps to ErrInvalidCredentials; every other failure surfaces as usual.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := c.ensureClient(); err != nil {
		return "", err
	}
	username := strings.TrimSpace(creds.Username)
	if username == "" {
		return "", errors.New("username is required")
	}

	endpoint, err := c.endpoint("/token", nil)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", creds.Password)

	status, body, err := c.WithToken("").do(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized {
		return "", ErrInvalidCredentials
	}
	if status < 200 || status >= 300 {
		return "", newAPIError(status, body)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("backend response: %w", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("backend returned an empty access token")
	}
	return payload.AccessToken, nil
}

// CurrentUser fetches GET /users/me for the bound token.
func (b *Bound) CurrentUser(ctx context.Context) (Account, error) {
	endpoint, err := b.c.endpoint("/users/me", nil)
	if err != nil {
		return Account{}, err
	}
	var account Account
	if err := b.getJSON(ctx, endpoint, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}
