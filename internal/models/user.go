package models

import "time"

// Roles understood by the authorization checks.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}

// UserModel is a back-office account.
type UserModel struct {
	Base
	Username     string     `json:"username"        gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordHash string     `json:"-"               gorm:"not null"`
	Role         string     `json:"role"            gorm:"type:varchar(16);not null;default:admin"`
	LastLoginAt  *time.Time `json:"last_login_time"`
}

func (UserModel) TableName() string { return "users" }
