package domain

import (
	"strings"
	"time"
)

// User is the stored identity. It never leaves the process as-is; handlers
// only ever serialize PublicUser.
type User struct {
	ID             string
	Email          string // normalized, unique
	PasswordHash   string // bcrypt
	Name           string
	Phone          string
	Role           Role
	Active         bool
	ResetTokenHash *string // fingerprint of the outstanding reset token
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicUser is the outward view of an identity.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	Active    bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Redact strips credential and reset material.
func Redact(u User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RedactAll maps Redact over users.
func RedactAll(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, Redact(u))
	}
	return out
}

// NormalizeEmail trims and lower-cases an address. Lookups and the unique
// index both operate on this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFilter narrows user listings. Nil fields do not filter.
type UserFilter struct {
	Role   *Role
	Active *bool
	Limit  int
	Offset int
}

// UserPatch carries profile fields a member may change about themselves.
type UserPatch struct {
	Name  *string
	Phone *string
}
