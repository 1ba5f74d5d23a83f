package user

import (
	"context"
	"errors"
	"strings"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/pkg/password"
)

type Service struct{ store Store }

func NewService(store Store) *Service { return &Service{store: store} }

// Store exposes the underlying store for collaborators such as the session gate.
func (s *Service) Store() Store { return s.store }

// EnsureAdmin creates an admin account named username when none exists. An
// existing account is returned untouched. The bool reports creation.
func (s *Service) EnsureAdmin(ctx context.Context, username, plain string) (*models.UserModel, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, false, errors.New("admin username is required")
	}

	u, err := s.store.FindByUsername(ctx, username)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if plain == "" {
		return nil, false, password.ErrTooShort
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, false, err
	}
	u = &models.UserModel{Username: username, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			existing, findErr := s.store.FindByUsername(ctx, username)
			return existing, false, findErr
		}
		return nil, false, err
	}
	return u, true, nil
}

// ChangePassword replaces the password of user id after checking current.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !password.Verify(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	return s.setHash(ctx, u.ID, next)
}

// SetPassword replaces the password of username without checking the old one.
func (s *Service) SetPassword(ctx context.Context, username, next string) error {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.setHash(ctx, u.ID, next)
}

func (s *Service) setHash(ctx context.Context, id, next string) error {
	if err := password.Validate(next); err != nil {
		return err
	}
	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

// SetRole changes the role of the user referenced by id or username.
func (s *Service) SetRole(ctx context.Context, ref, role string) (*models.UserModel, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	u, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}

func (s *Service) resolve(ctx context.Context, ref string) (*models.UserModel, error) {
	u, err := s.store.FindByID(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return s.store.FindByUsername(ctx, ref)
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]models.UserModel, error) {
	return s.store.List(ctx)
}

// Delete removes user id on behalf of actorID. Users cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}
	return s.store.Delete(ctx, id)
}
