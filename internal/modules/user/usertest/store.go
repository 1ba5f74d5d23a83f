// Package usertest provides an in-memory user store for tests.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/pkg/password"
	"github.com/google/uuid"
)

// Store implements user.Store in memory. Deleted users disappear from
// every lookup, like soft-deleted rows do.
type Store struct {
	mu    sync.Mutex
	users map[string]models.UserModel
	// Err, when set, is returned by every method.
	Err error
}

var _ user.Store = (*Store)(nil)

func New() *Store { return &Store{users: map[string]models.UserModel{}} }

// Add stores a user with the bcrypt hash of plain and returns it.
func (s *Store) Add(username, plain, role string) *models.UserModel {
	hash, err := password.Hash(plain)
	if err != nil {
		panic(err)
	}
	u := &models.UserModel{Username: username, PasswordHash: hash, Role: role}
	if err := s.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (s *Store) FindByID(_ context.Context, id string) (*models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (*models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *Store) Create(_ context.Context, u *models.UserModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) modify(id string, fn func(*models.UserModel)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, id, hash string) error {
	return s.modify(id, func(u *models.UserModel) { u.PasswordHash = hash })
}

func (s *Store) UpdateRole(_ context.Context, id, role string) error {
	return s.modify(id, func(u *models.UserModel) { u.Role = role })
}

func (s *Store) TouchLogin(_ context.Context, id string, at time.Time) error {
	return s.modify(id, func(u *models.UserModel) { u.LastLoginAt = &at })
}

func (s *Store) List(_ context.Context) ([]models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.UserModel, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
