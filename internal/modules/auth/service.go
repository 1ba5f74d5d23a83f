package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/metrics"
	"github.com/afr-space/core/internal/pkg/password"
	"go.uber.org/zap"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// timingHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
func timingHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = password.Hash("afr-unknown-user")
	})
	return dummyHash
}

// LoginResult is a successful credential check.
type LoginResult struct {
	User  user.PublicUser
	Token string
}

type Service struct {
	users   UserLookup
	codec   *jwt.Codec
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewService(users UserLookup, codec *jwt.Codec, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, codec: codec, metrics: m, log: log, now: time.Now}
}

// Login checks username and password and issues a session token. Unknown
// users and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, plain string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		s.metrics.AuthAttempt("error")
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if u == nil {
		password.Verify(timingHash(), plain)
		s.reject("unknown_user")
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(u.PasswordHash, plain) {
		s.reject("wrong_password")
		return nil, ErrInvalidCredentials
	}

	pub := user.Public(u)
	token, err := s.codec.Issue(jwt.Identity{ID: pub.ID, Username: pub.Username, Role: pub.Role})
	if err != nil {
		s.metrics.AuthAttempt("error")
		return nil, err
	}

	if err := s.users.TouchLogin(ctx, u.ID, s.now()); err != nil {
		s.log.Warn("record last login failed", zap.String("uid", u.ID), zap.Error(err))
	}
	s.metrics.AuthAttempt("ok")
	s.log.Info("login succeeded", zap.String("uid", u.ID))
	return &LoginResult{User: pub, Token: token}, nil
}

func (s *Service) reject(reason string) {
	s.metrics.AuthAttempt("invalid")
	s.log.Warn("login rejected", zap.String("reason", reason))
}
