package domain

import "time"

// Well-known role names. The effective ordering between them is carried
// by RoleHierarchy, not by these constants.
const (
	RoleViewer   = "viewer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"

	// RolePublic marks content readable regardless of the user's roles
	RolePublic = "public"
)

// User represents an account that can authenticate and search
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole checks if the user holds the given role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UserSummary provides a safe view of user data (no password hash)
type UserSummary struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// ToSummary converts a User to UserSummary
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:    u.ID,
		Email: u.Email,
		Roles: u.Roles,
	}
}
