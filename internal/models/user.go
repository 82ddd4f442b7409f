// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleStaff     Role = "staff"
	RoleMember    Role = "member"
)

// User is an account that can author posts and comments.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsSuperuser returns true if the user has the superuser role.
func (u *User) IsSuperuser() bool {
	return u.Role == RoleSuperuser
}

// IsStaff returns true for staff and superusers, the roles allowed to
// publish posts.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleSuperuser
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Needs2FAVerify returns true if the user enrolled in TOTP and must
// present a code after the password step.
func (u *User) Needs2FAVerify() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
