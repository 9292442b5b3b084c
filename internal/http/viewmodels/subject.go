// Package viewmodels defines the JSON shapes the console API returns.
package viewmodels

import "github.com/Diogovx/offboarding-console/internal/reconcile"

// ServiceView is one downstream entitlement row.
type ServiceView struct {
	System string `json:"system"`
	Active bool   `json:"active"`
}

// LastEventView summarizes the most recent offboarding of a subject.
type LastEventView struct {
	Timestamp      string   `json:"timestamp"`
	RevokedSystems []string `json:"revoked_systems"`
}

// SubjectView is the reconciled lookup result shown on the search screen.
type SubjectView struct {
	Registration  string         `json:"registration"`
	Name          string         `json:"name,omitempty"`
	Found         bool           `json:"found"`
	IsOffboarded  bool           `json:"is_offboarded"`
	Services      []ServiceView  `json:"services"`
	LastEvent     *LastEventView `json:"last_event,omitempty"`
	ExecutorState string         `json:"executor_state"`
}

// NewSubjectView flattens a reconciled view for the API.
func NewSubjectView(v reconcile.View, executorState string) SubjectView {
	services := make([]ServiceView, 0, len(v.Services))
	for _, s := range v.Services {
		services = append(services, ServiceView{System: s.System, Active: s.Active})
	}
	out := SubjectView{
		Registration:  v.Registration,
		Name:          v.Name,
		Found:         v.Found,
		IsOffboarded:  v.IsOffboarded,
		Services:      services,
		ExecutorState: executorState,
	}
	if v.LastEvent != nil {
		out.LastEvent = &LastEventView{
			Timestamp:      v.LastEvent.Timestamp.Format("2006-01-02 15:04:05"),
			RevokedSystems: v.LastEvent.RevokedSystems,
		}
	}
	return out
}

// OutcomeView reports how an offboarding execution settled.
type OutcomeView struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Systems []string `json:"systems,omitempty"`
	State   string   `json:"state"`
}
