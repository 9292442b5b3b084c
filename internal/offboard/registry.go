package offboard

import "sync"

// Registry holds one Executor per operator session so concurrent requests
// from the same operator share a single state machine.
type Registry struct {
	mu        sync.Mutex
	executors map[string]*Executor
}

func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]*Executor)}
}

// ForSession returns the executor bound to the session token, creating it on
// first use.
func (r *Registry) ForSession(token string) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.executors[token]; ok {
		return e
	}
	e := NewExecutor()
	r.executors[token] = e
	return e
}

// Drop discards the executor for a session that ended.
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.executors, token)
}
