package client

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// State is where a session check stands.
type State int

const (
	Pending State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "pending"
}

// SessionState is the outcome of a session check. User is set only when
// State is Authenticated.
type SessionState struct {
	State State
	User  *User
}

// SessionChecker asks the server who is signed in.
type SessionChecker interface {
	Session(ctx context.Context) (*User, error)
}

// SessionResolver runs at most one session check per key at a time and
// remembers the settled answer until Invalidate. A check that started
// before Invalidate never overwrites what came after it.
type SessionResolver struct {
	checker SessionChecker
	group   singleflight.Group

	mu      sync.RWMutex
	settled map[string]SessionState
	gen     map[string]uint64
}

func NewSessionResolver(checker SessionChecker) *SessionResolver {
	return &SessionResolver{
		checker: checker,
		settled: make(map[string]SessionState),
		gen:     make(map[string]uint64),
	}
}

// Peek returns the settled state for key without fetching.
func (r *SessionResolver) Peek(key string) (SessionState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settled[key]
	return s, ok
}

// Resolve returns the session state for key, fetching it once if needed.
// Any failure counts as Unauthenticated. When ctx ends first the caller
// gets Pending and the shared fetch keeps running for the others.
func (r *SessionResolver) Resolve(ctx context.Context, key string) SessionState {
	if s, ok := r.Peek(key); ok {
		return s
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		r.mu.RLock()
		s, ok := r.settled[key]
		gen := r.gen[key]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}
		s = r.check(context.WithoutCancel(ctx))
		r.mu.Lock()
		if r.gen[key] == gen {
			r.settled[key] = s
		}
		r.mu.Unlock()
		return s, nil
	})

	select {
	case res := <-ch:
		return res.Val.(SessionState)
	case <-ctx.Done():
		return SessionState{State: Pending}
	}
}

func (r *SessionResolver) check(ctx context.Context) SessionState {
	u, err := r.checker.Session(ctx)
	if err != nil || u == nil {
		return SessionState{State: Unauthenticated}
	}
	return SessionState{State: Authenticated, User: u}
}

// Invalidate forgets the settled state for key, typically after login or
// logout.
func (r *SessionResolver) Invalidate(key string) {
	r.mu.Lock()
	delete(r.settled, key)
	r.gen[key]++
	r.mu.Unlock()
	r.group.Forget(key)
}
