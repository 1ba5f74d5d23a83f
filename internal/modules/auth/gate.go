package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/metrics"
	"github.com/afr-space/core/internal/pkg/session"
	"go.uber.org/zap"
)

// UserLookup is the part of the user store needed for authentication.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.UserModel, error)
	FindByUsername(ctx context.Context, username string) (*models.UserModel, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// Gate turns a request cookie into an authentication decision. It holds no
// per-request state and is safe for concurrent use.
type Gate struct {
	codec     *jwt.Codec
	transport *session.Transport
	users     UserLookup
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewGate(codec *jwt.Codec, transport *session.Transport, users UserLookup, m *metrics.Metrics, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{codec: codec, transport: transport, users: users, metrics: m, log: log}
}

// Evaluate extracts the session cookie, verifies the token and reloads the
// user it names. Any failure yields Unauthenticated.
func (g *Gate) Evaluate(ctx context.Context, r *http.Request) Decision {
	d := g.evaluate(ctx, r)
	if d.Authenticated() {
		g.metrics.SessionCheck(d.State.String())
	} else {
		g.metrics.SessionCheck(string(d.Reason))
	}
	return d
}

func (g *Gate) evaluate(ctx context.Context, r *http.Request) Decision {
	token, ok := g.transport.Extract(r)
	if !ok {
		return Decision{Reason: ReasonNoCookie}
	}

	claims, err := g.codec.Verify(token)
	if err != nil {
		g.log.Debug("session token rejected", zap.Error(err))
		return Decision{Reason: ReasonInvalidToken}
	}

	u, err := g.users.FindByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		g.log.Warn("session for missing user", zap.String("uid", claims.UserID))
		return Decision{Reason: ReasonUserMissing}
	case err != nil:
		g.log.Error("session user lookup failed", zap.Error(err))
		return Decision{Reason: ReasonStoreError}
	}

	return Decision{State: Authenticated, User: user.Public(u)}
}

// Authenticate adapts Evaluate for the HTTP middleware.
func (g *Gate) Authenticate(r *http.Request) (jwt.Identity, bool) {
	d := g.Evaluate(r.Context(), r)
	if !d.Authenticated() {
		return jwt.Identity{}, false
	}
	return jwt.Identity{ID: d.User.ID, Username: d.User.Username, Role: d.User.Role}, true
}

// User returns the signed-in user of r or an error wrapping ErrUnauthenticated.
func (g *Gate) User(ctx context.Context, r *http.Request) (user.PublicUser, error) {
	d := g.Evaluate(ctx, r)
	if !d.Authenticated() {
		return user.PublicUser{}, fmt.Errorf("%w: %s", ErrUnauthenticated, d.Reason)
	}
	return d.User, nil
}
