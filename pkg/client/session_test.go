package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	calls   atomic.Int32
	release chan struct{}
	user    *User
	err     error
}

func (c *countingChecker) Session(context.Context) (*User, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	return c.user, c.err
}

func TestResolver_DeduplicatesConcurrentCalls(t *testing.T) {
	checker := &countingChecker{release: make(chan struct{}), user: &User{ID: "u-1", Username: "admin"}}
	r := NewSessionResolver(checker)

	var wg sync.WaitGroup
	results := make([]SessionState, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "admin")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(checker.release)
	wg.Wait()

	assert.Equal(t, int32(1), checker.calls.Load())
	for _, s := range results {
		assert.Equal(t, Authenticated, s.State)
		assert.Equal(t, "admin", s.User.Username)
	}
}

func TestResolver_CachesUntilInvalidate(t *testing.T) {
	checker := &countingChecker{user: &User{ID: "u-1"}}
	r := NewSessionResolver(checker)

	r.Resolve(context.Background(), "k")
	r.Resolve(context.Background(), "k")
	assert.Equal(t, int32(1), checker.calls.Load())

	r.Invalidate("k")
	r.Resolve(context.Background(), "k")
	assert.Equal(t, int32(2), checker.calls.Load())
}

// loginRaceChecker holds its first call open and reports it signed out.
// Later calls see the signed-in user.
type loginRaceChecker struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *loginRaceChecker) Session(context.Context) (*User, error) {
	if c.calls.Add(1) == 1 {
		<-c.release
		return nil, ErrUnauthenticated
	}
	return &User{ID: "u-1", Username: "admin"}, nil
}

func TestResolver_CheckStartedBeforeInvalidateDoesNotOverwrite(t *testing.T) {
	checker := &loginRaceChecker{release: make(chan struct{})}
	r := NewSessionResolver(checker)

	first := make(chan SessionState, 1)
	go func() { first <- r.Resolve(context.Background(), "me") }()
	require.Eventually(t, func() bool { return checker.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	r.Invalidate("me")
	assert.Equal(t, Authenticated, r.Resolve(context.Background(), "me").State)

	close(checker.release)
	assert.Equal(t, Unauthenticated, (<-first).State)

	s, ok := r.Peek("me")
	require.True(t, ok)
	assert.Equal(t, Authenticated, s.State)
	assert.Equal(t, "admin", s.User.Username)
}

func TestResolver_FailureIsUnauthenticated(t *testing.T) {
	r := NewSessionResolver(&countingChecker{err: errors.New("connection refused")})
	s := r.Resolve(context.Background(), "k")
	assert.Equal(t, Unauthenticated, s.State)
	assert.Nil(t, s.User)
}

func TestResolver_CancelledCallerGetsPending(t *testing.T) {
	checker := &countingChecker{release: make(chan struct{}), user: &User{ID: "u-1"}}
	r := NewSessionResolver(checker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, Pending, r.Resolve(ctx, "k").State)

	close(checker.release)
	require.Eventually(t, func() bool {
		_, ok := r.Peek("k")
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, Authenticated, r.Resolve(context.Background(), "k").State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
