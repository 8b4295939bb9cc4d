package models

import "strings"

// Role distinguishes clients from cleaners. The inquiry core treats it as opaque.
type Role string

const (
	RoleClient  Role = "client"
	RoleCleaner Role = "cleaner"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleCleaner
}

// User is the identity of whoever is acting
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// MatchesEmail compares emails the way inquiry routing does (case-insensitive)
func (u *User) MatchesEmail(email string) bool {
	if u == nil {
		return false
	}
	return strings.EqualFold(u.Email, email)
}

// Session binds an opaque bearer token to a user
type Session struct {
	Token     string `json:"token"`
	User      User   `json:"user"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at,omitempty"`
}
