package client

import "context"

// DefaultLoginPath is where unauthenticated visitors are sent.
const DefaultLoginPath = "/admin"

// Outcome is what a protected view shows at a point in time.
type Outcome[R any] struct {
	State    State
	Output   R
	Redirect string
}

// Loading reports whether the session check is still running.
func (o Outcome[R]) Loading() bool { return o.State == Pending }

// Protected wraps a component so it renders only for signed-in users.
type Protected[P, R any] struct {
	resolver  *SessionResolver
	key       string
	loginPath string
	component func(P) R
}

// WithAuth guards component with the session stored under key. Props are
// passed through unchanged.
func WithAuth[P, R any](resolver *SessionResolver, key, loginPath string, component func(P) R) *Protected[P, R] {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Protected[P, R]{resolver: resolver, key: key, loginPath: loginPath, component: component}
}

func (p *Protected[P, R]) outcome(s SessionState, props P) Outcome[R] {
	switch s.State {
	case Authenticated:
		return Outcome[R]{State: Authenticated, Output: p.component(props)}
	case Unauthenticated:
		return Outcome[R]{State: Unauthenticated, Redirect: p.loginPath}
	}
	return Outcome[R]{State: Pending}
}

// Render returns the current outcome without blocking. Before the session
// has settled it reports Loading.
func (p *Protected[P, R]) Render(props P) Outcome[R] {
	s, ok := p.resolver.Peek(p.key)
	if !ok {
		return Outcome[R]{State: Pending}
	}
	return p.outcome(s, props)
}

// Mount shows the loading outcome, resolves the session and then calls
// update with the final outcome. If ctx is done before that, the result is
// dropped. The returned channel closes when Mount is finished.
func (p *Protected[P, R]) Mount(ctx context.Context, props P, update func(Outcome[R])) <-chan struct{} {
	done := make(chan struct{})
	if s, ok := p.resolver.Peek(p.key); ok {
		update(p.outcome(s, props))
		close(done)
		return done
	}

	update(Outcome[R]{State: Pending})
	go func() {
		defer close(done)
		s := p.resolver.Resolve(ctx, p.key)
		if ctx.Err() != nil || s.State == Pending {
			return
		}
		update(p.outcome(s, props))
	}()
	return done
}
