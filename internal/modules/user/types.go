package user

import (
	"errors"
	"time"

	"github.com/afr-space/core/internal/models"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrWrongPassword = errors.New("wrong password")
	ErrInvalidRole   = errors.New("invalid role")
	ErrSelfDelete    = errors.New("cannot delete the current user")
)

type ChangePasswordDTO struct {
	Current string `json:"current" binding:"required"`
	Next    string `json:"next"    binding:"required"`
}

type SetRoleDTO struct {
	Role string `json:"role" binding:"required"`
}

// PublicUser is the user shape exposed by the session endpoints.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Role          string     `json:"role"`
	Created       time.Time  `json:"created"`
	LastLoginTime *time.Time `json:"last_login_time"`
}

// Public returns the id, username and role of u.
func Public(u *models.UserModel) PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

func toResponse(u *models.UserModel) userResponse {
	return userResponse{
		ID:            u.ID,
		Username:      u.Username,
		Role:          u.Role,
		Created:       u.CreatedAt,
		LastLoginTime: u.LastLoginAt,
	}
}
