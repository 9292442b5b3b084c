package backendapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SubjectProfile is the directory record for one registration identifier.
// Active is tri-state: nil means the directory did not report an activity flag.
type SubjectProfile struct {
	Registration string
	Name         string
	Found        bool
	Active       *bool
}

// OffboardingEvent is one historical offboarding record. The console only ever
// reads the most recent event per subject.
type OffboardingEvent struct {
	Registration   string
	Timestamp      time.Time
	RevokedSystems []string
}

// ExecuteResult is the backend's report for a revoke call.
type ExecuteResult struct {
	Success bool     `json:"success"`
	Details []string `json:"details"`
}

// SubjectProfile fetches GET /intouch/{registration}. A backend 404 is mapped
// to a profile with Found=false rather than an error.
func (b *Bound) SubjectProfile(ctx context.Context, registration string) (SubjectProfile, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return SubjectProfile{}, errors.New("registration is required")
	}

	endpoint, err := b.c.endpoint("/intouch/"+url.PathEscape(registration), nil)
	if err != nil {
		return SubjectProfile{}, err
	}

	var payload struct {
		Found        bool   `json:"found"`
		Registration string `json:"registration"`
		Name         string `json:"name"`
		IsActive     *bool  `json:"is_active"`
	}
	if err := b.getJSON(ctx, endpoint, &payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			return SubjectProfile{Registration: registration, Found: false}, nil
		}
		return SubjectProfile{}, err
	}

	profile := SubjectProfile{
		Registration: payload.Registration,
		Name:         payload.Name,
		Found:        payload.Found,
		Active:       payload.IsActive,
	}
	if profile.Registration == "" {
		profile.Registration = registration
	}
	return profile, nil
}

// ActiveEntitlements fetches GET /offboarding/search/{registration}: the live
// per-system activity map.
func (b *Bound) ActiveEntitlements(ctx context.Context, registration string) (map[string]bool, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return nil, errors.New("registration is required")
	}

	endpoint, err := b.c.endpoint("/offboarding/search/"+url.PathEscape(registration), nil)
	if err != nil {
		return nil, err
	}

	var payload map[string]bool
	if err := b.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// LastOffboarding fetches the most recent history record for the subject, or
// nil when the subject was never offboarded.
func (b *Bound) LastOffboarding(ctx context.Context, registration string) (*OffboardingEvent, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return nil, errors.New("registration is required")
	}

	query := url.Values{}
	query.Set("registration", registration)
	query.Set("limit", "1")
	endpoint, err := b.c.endpoint("/offboarding/history/", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Total int `json:"total"`
		Items []struct {
			Registration   string   `json:"registration"`
			Timestamp      string   `json:"timestamp"`
			OffboardedAt   string   `json:"offboarded_at"`
			RevokedSystems []string `json:"revoked_systems"`
		} `json:"items"`
	}
	if err := b.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}

	item := payload.Items[0]
	event := &OffboardingEvent{
		Registration:   item.Registration,
		RevokedSystems: item.RevokedSystems,
	}
	raw := item.OffboardedAt
	if raw == "" {
		raw = item.Timestamp
	}
	if raw != "" {
		ts, err := parseBackendTime(raw)
		if err != nil {
			return nil, fmt.Errorf("history timestamp: %w", err)
		}
		event.Timestamp = ts
	}
	return event, nil
}

// ExecuteOffboarding issues the irreversible revoke call for the subject.
// Business failures arrive either as a non-2xx APIError carrying the backend
// detail text, or as a 2xx result with Success=false.
func (b *Bound) ExecuteOffboarding(ctx context.Context, registration string) (ExecuteResult, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return ExecuteResult{}, errors.New("registration is required")
	}

	endpoint, err := b.c.endpoint("/offboarding/execute/"+url.PathEscape(registration), nil)
	if err != nil {
		return ExecuteResult{}, err
	}

	var result ExecuteResult
	if err := b.postJSON(ctx, endpoint, nil, &result); err != nil {
		return ExecuteResult{}, err
	}
	return result, nil
}

func parseBackendTime(raw string) (time.Time, error) {
	// The backend emits RFC 3339 when the record carries a zone and a bare
	// ISO timestamp otherwise.
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
