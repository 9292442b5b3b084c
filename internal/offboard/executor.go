// Package offboard guards the irreversible revoke call behind an explicit
// confirmation state machine.
package offboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/metrics"
	"github.com/Diogovx/offboarding-console/internal/reconcile"
)

// State is the executor's position in the confirm/execute flow.
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNoSubject rejects a confirmation attempt before any search loaded a subject.
	ErrNoSubject = errors.New("no subject loaded")
	// ErrNotConfirming rejects confirm/cancel outside the confirmation step.
	ErrNotConfirming = errors.New("no confirmation in progress")
	// ErrExecutionInProgress rejects a second confirm while the revoke call is pending.
	ErrExecutionInProgress = errors.New("offboarding execution already in progress")
)

// Revoker issues the backend revoke call. *backendapi.Bound satisfies it.
type Revoker interface {
	ExecuteOffboarding(ctx context.Context, registration string) (backendapi.ExecuteResult, error)
}

// Outcome is the settled result of one execution.
type Outcome struct {
	Success bool
	Systems []string
	Message string
}

const genericFailureMessage = "Internal error processing offboarding."

// Executor is the per-screen confirm/execute state machine:
// Idle -> Confirming -> Executing -> Succeeded|Failed, and back to Idle when
// the next search loads a subject. All transitions are checked; an illegal
// one returns an error instead of silently proceeding.
type Executor struct {
	mu      sync.Mutex
	state   State
	subject reconcile.View
	loaded  bool
	outcome *Outcome
}

func NewExecutor() *Executor {
	return &Executor{state: StateIdle}
}

// LoadSubject installs a freshly searched subject and resets the machine to
// Idle. A settled outcome from the previous subject is discarded.
func (e *Executor) LoadSubject(view reconcile.View) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subject = view
	e.loaded = view.Found
	e.state = StateIdle
	e.outcome = nil
}

// ClearSubject drops the loaded subject without touching a settled outcome.
func (e *Executor) ClearSubject() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subject = reconcile.View{}
	e.loaded = false
	e.state = StateIdle
}

// State returns the current machine state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subject returns the loaded subject, if any.
func (e *Executor) Subject() (reconcile.View, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subject, e.loaded
}

// Outcome returns the settled result of the last execution, if any.
func (e *Executor) Outcome() (Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome == nil {
		return Outcome{}, false
	}
	return *e.outcome, true
}

// BeginConfirmation opens the confirmation step. No backend call happens yet.
func (e *Executor) BeginConfirmation() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateExecuting:
		return ErrExecutionInProgress
	case StateConfirming:
		return nil
	}
	if !e.loaded {
		return ErrNoSubject
	}
	e.state = StateConfirming
	return nil
}

// CancelConfirmation leaves the confirmation step with no side effect.
func (e *Executor) CancelConfirmation() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateConfirming {
		return ErrNotConfirming
	}
	e.state = StateIdle
	return nil
}

// Confirm executes the revoke call for the loaded subject. A concurrent
// confirm while one is pending is rejected, so at most one revoke request is
// ever sent per confirmation. There is no cancellation once the call started;
// it is awaited to completion.
//
// On success the subject is cleared, forcing a fresh search before any further
// action. On failure the subject is preserved so the operator can retry.
func (e *Executor) Confirm(ctx context.Context, revoker Revoker) (Outcome, error) {
	e.mu.Lock()
	if e.state == StateExecuting {
		e.mu.Unlock()
		return Outcome{}, ErrExecutionInProgress
	}
	if e.state != StateConfirming {
		e.mu.Unlock()
		return Outcome{}, ErrNotConfirming
	}
	registration := e.subject.Registration
	e.state = StateExecuting
	e.mu.Unlock()

	result, err := revoker.ExecuteOffboarding(ctx, registration)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state = StateFailed
		message := backendapi.Detail(err)
		if message == "" {
			message = genericFailureMessage
		}
		e.outcome = &Outcome{Success: false, Message: message}
		metrics.OffboardingExecutionsTotal.WithLabelValues("failure").Inc()
		return *e.outcome, err
	}
	if !result.Success {
		e.state = StateFailed
		e.outcome = &Outcome{Success: false, Message: genericFailureMessage}
		metrics.OffboardingExecutionsTotal.WithLabelValues("failure").Inc()
		return *e.outcome, nil
	}

	e.state = StateSucceeded
	e.subject = reconcile.View{}
	e.loaded = false
	e.outcome = &Outcome{
		Success: true,
		Systems: result.Details,
		Message: fmt.Sprintf("Success! Systems affected: %s", strings.Join(result.Details, ", ")),
	}
	metrics.OffboardingExecutionsTotal.WithLabelValues("success").Inc()
	return *e.outcome, nil
}
