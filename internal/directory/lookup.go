// Package directory orchestrates the three-way subject lookup and hands the
// results to the reconciler as one atomic unit.
package directory

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/metrics"
	"github.com/Diogovx/offboarding-console/internal/reconcile"
)

// Source is the slice of the backend client the lookup needs.
// *backendapi.Bound satisfies it.
type Source interface {
	SubjectProfile(ctx context.Context, registration string) (backendapi.SubjectProfile, error)
	ActiveEntitlements(ctx context.Context, registration string) (map[string]bool, error)
	LastOffboarding(ctx context.Context, registration string) (*backendapi.OffboardingEvent, error)
}

// ErrEmptyRegistration rejects a blank search before any request is issued.
var ErrEmptyRegistration = errors.New("registration is required")

// Lookup issues the profile, entitlement-map and history queries concurrently,
// waits for all three, and reconciles them. Callers never observe a partially
// applied result: either a full view is returned or an error.
//
// A not-found profile is a terminal outcome, not an error; the other two
// results are discarded by the reconciler. A 404 on the entitlement or history
// query is treated as an empty result. Any other failure aborts the lookup.
func Lookup(ctx context.Context, src Source, registration string) (reconcile.View, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return reconcile.View{}, ErrEmptyRegistration
	}

	var in reconcile.Inputs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := src.SubjectProfile(gctx, registration)
		if err != nil {
			return err
		}
		in.Profile = profile
		return nil
	})
	g.Go(func() error {
		entitlements, err := src.ActiveEntitlements(gctx, registration)
		if err != nil {
			if errors.Is(err, backendapi.ErrNotFound) {
				return nil
			}
			return err
		}
		in.Entitlements = entitlements
		return nil
	})
	g.Go(func() error {
		event, err := src.LastOffboarding(gctx, registration)
		if err != nil {
			if errors.Is(err, backendapi.ErrNotFound) {
				return nil
			}
			return err
		}
		in.LastEvent = event
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return reconcile.View{}, err
	}

	view := reconcile.Reconcile(in)
	if view.Found {
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeFound).Inc()
	} else {
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
	}
	return view, nil
}
