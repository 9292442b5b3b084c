package directory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
)

type fakeSource struct {
	profile      backendapi.SubjectProfile
	profileErr   error
	entitlements map[string]bool
	entitleErr   error
	event        *backendapi.OffboardingEvent
	historyErr   error

	profileCalls int32
	entitleCalls int32
	historyCalls int32
}

func (f *fakeSource) SubjectProfile(ctx context.Context, registration string) (backendapi.SubjectProfile, error) {
	atomic.AddInt32(&f.profileCalls, 1)
	return f.profile, f.profileErr
}

func (f *fakeSource) ActiveEntitlements(ctx context.Context, registration string) (map[string]bool, error) {
	atomic.AddInt32(&f.entitleCalls, 1)
	return f.entitlements, f.entitleErr
}

func (f *fakeSource) LastOffboarding(ctx context.Context, registration string) (*backendapi.OffboardingEvent, error) {
	atomic.AddInt32(&f.historyCalls, 1)
	return f.event, f.historyErr
}

func TestLookupRejectsBlankRegistration(t *testing.T) {
	src := &fakeSource{}
	if _, err := Lookup(context.Background(), src, "   "); !errors.Is(err, ErrEmptyRegistration) {
		t.Fatalf("error = %v, want ErrEmptyRegistration", err)
	}
	if atomic.LoadInt32(&src.profileCalls) != 0 {
		t.Fatal("no request may fire for a blank registration")
	}
}

func TestLookupIssuesAllThreeQueries(t *testing.T) {
	active := true
	src := &fakeSource{
		profile:      backendapi.SubjectProfile{Registration: "12345", Name: "Alice", Found: true, Active: &active},
		entitlements: map[string]bool{"Rede": true},
	}

	view, err := Lookup(context.Background(), src, "12345")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if !view.Found || view.IsOffboarded {
		t.Fatalf("unexpected view: %#v", view)
	}
	if src.profileCalls != 1 || src.entitleCalls != 1 || src.historyCalls != 1 {
		t.Fatalf("calls = %d/%d/%d, want 1/1/1", src.profileCalls, src.entitleCalls, src.historyCalls)
	}
}

func TestLookupNotFoundIsTerminalNotErroneous(t *testing.T) {
	src := &fakeSource{
		profile:      backendapi.SubjectProfile{Registration: "99999", Found: false},
		entitlements: map[string]bool{"Rede": true},
		event:        &backendapi.OffboardingEvent{Registration: "99999", RevokedSystems: []string{"Rede"}},
	}

	view, err := Lookup(context.Background(), src, "99999")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if view.Found {
		t.Fatal("Found = true, want false")
	}
	if len(view.Services) != 0 || view.LastEvent != nil {
		t.Fatalf("sibling results leaked into the view: %#v", view)
	}
}

func TestLookupTransportFailureAborts(t *testing.T) {
	src := &fakeSource{
		profile:    backendapi.SubjectProfile{Registration: "12345", Found: true},
		entitleErr: errors.New("connection refused"),
	}

	if _, err := Lookup(context.Background(), src, "12345"); err == nil {
		t.Fatal("expected the lookup to surface the transport failure")
	}
}

func TestLookupToleratesNotFoundOnSecondaryQueries(t *testing.T) {
	src := &fakeSource{
		profile:    backendapi.SubjectProfile{Registration: "12345", Found: true},
		entitleErr: &backendapi.APIError{StatusCode: 404},
		historyErr: &backendapi.APIError{StatusCode: 404},
	}

	view, err := Lookup(context.Background(), src, "12345")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if !view.Found {
		t.Fatal("Found = false, want true")
	}
	if len(view.Services) != 0 {
		t.Fatalf("Services = %v, want empty", view.Services)
	}
}
