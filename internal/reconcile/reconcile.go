// Package reconcile derives a consistent offboarding status from the three
// independent lookup results: directory profile, live entitlement map, and the
// most recent offboarding event. It is deterministic and side-effect free so
// the derivation can be tested from fixed input triples.
package reconcile

import (
	"sort"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
)

// Entitlement names one downstream system and whether the subject still has
// active access to it.
type Entitlement struct {
	System string `json:"system"`
	Active bool   `json:"active"`
}

// Inputs are the three lookup outcomes, committed together.
type Inputs struct {
	Profile      backendapi.SubjectProfile
	Entitlements map[string]bool
	LastEvent    *backendapi.OffboardingEvent
}

// View is the reconciled, render-ready state for one subject.
type View struct {
	Registration string
	Name         string
	Found        bool
	IsOffboarded bool
	Services     []Entitlement
	LastEvent    *backendapi.OffboardingEvent
}

// Reconcile combines the lookup results.
//
// IsOffboarded precedence, first match wins:
//  1. an explicitly active profile is never offboarded, history notwithstanding;
//  2. any history record means offboarded;
//  3. an explicitly inactive profile means offboarded;
//  4. otherwise not offboarded.
//
// Services prefers the live entitlement map; when it is empty the revoked
// systems of the last event are synthesized as inactive entries.
func Reconcile(in Inputs) View {
	if !in.Profile.Found {
		// Not-found is terminal: entitlements and history are discarded
		// even if they were fetched.
		return View{Registration: in.Profile.Registration}
	}

	view := View{
		Registration: in.Profile.Registration,
		Name:         in.Profile.Name,
		Found:        true,
		LastEvent:    in.LastEvent,
	}

	switch {
	case in.Profile.Active != nil && *in.Profile.Active:
		view.IsOffboarded = false
	case in.LastEvent != nil:
		view.IsOffboarded = true
	case in.Profile.Active != nil && !*in.Profile.Active:
		view.IsOffboarded = true
	default:
		view.IsOffboarded = false
	}

	switch {
	case len(in.Entitlements) > 0:
		view.Services = make([]Entitlement, 0, len(in.Entitlements))
		for system, active := range in.Entitlements {
			view.Services = append(view.Services, Entitlement{System: system, Active: active})
		}
		sort.Slice(view.Services, func(i, j int) bool {
			return view.Services[i].System < view.Services[j].System
		})
	case in.LastEvent != nil:
		view.Services = make([]Entitlement, 0, len(in.LastEvent.RevokedSystems))
		for _, system := range in.LastEvent.RevokedSystems {
			view.Services = append(view.Services, Entitlement{System: system, Active: false})
		}
	}

	return view
}
