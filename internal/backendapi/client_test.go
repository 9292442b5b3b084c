package backendapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()
	c, err := New("https://backend.test")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.HTTP.Transport = rt
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New("   "); err == nil {
		t.Fatal("expected error for blank base URL")
	}
}

func TestBoundAttachesBearerToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		return jsonResponse(req, http.StatusOK, `{"userRole":1}`), nil
	})

	if _, err := c.WithToken("tok-123").CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestLoginSendsFormAndReturnsToken(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/token" {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Fatalf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(req.Body)
		if got := string(body); got != "password=s3cret&username=alice" {
			t.Fatalf("form body = %q", got)
		}
		return jsonResponse(req, http.StatusOK, `{"access_token":"tok-9","token_type":"bearer"}`), nil
	})

	token, err := c.Login(context.Background(), Credentials{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token != "tok-9" {
		t.Fatalf("token = %q, want %q", token, "tok-9")
	}
}

func TestLoginMapsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`), nil
	})

	_, err := c.Login(context.Background(), Credentials{Username: "alice", Password: "nope"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestErrorTaxonomyByStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"expired"}`, ErrUnauthorized},
		{"not found", http.StatusNotFound, `{"detail":"missing"}`, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(req, tc.status, tc.body), nil
			})
			_, err := c.WithToken("tok").CurrentUser(context.Background())
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(req, http.StatusBadRequest, `{"detail":"Date range cannot exceed 90 days"}`), nil
	})

	_, err := c.WithToken("tok").ListAuditLogs(context.Background(), LogFilter{Page: 1, Limit: 20})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := Detail(err); got != "Date range cannot exceed 90 days" {
		t.Fatalf("Detail = %q", got)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected *APIError with status 400, got %v", err)
	}
}

func TestResolveRelativeDownloadURL(t *testing.T) {
	c := newTestClient(t, nil)

	abs, err := c.resolve("/logs/export/audit_logs_1.csv")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if abs != "https://backend.test/logs/export/audit_logs_1.csv" {
		t.Fatalf("resolved = %q", abs)
	}

	abs, err = c.resolve("https://files.test/a.csv")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if abs != "https://files.test/a.csv" {
		t.Fatalf("resolved = %q", abs)
	}
}
