package domain

import (
	"strings"
	"time"
)

// Role is a tag granting access to operations that require it.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleSuperUser Role = "super-user"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperUser:
		return true
	default:
		return false
	}
}

// ParseRoles converts stored role tags into roles, dropping anything unknown.
func ParseRoles(tags []string) []Role {
	roles := make([]Role, 0, len(tags))
	for _, tag := range tags {
		r := Role(strings.TrimSpace(tag))
		if r.IsValid() {
			roles = append(roles, r)
		}
	}
	return roles
}

// Identity models a registered user.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	IsActive     bool      `json:"isActive"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasRole reports whether the identity carries role r.
func (i *Identity) HasRole(r Role) bool {
	if i == nil {
		return false
	}
	for _, held := range i.Roles {
		if held == r {
			return true
		}
	}
	return false
}

// Public returns a copy of the identity safe to hand to callers outside the
// credential service: the password hash is always cleared.
func (i *Identity) Public() *Identity {
	if i == nil {
		return nil
	}
	clone := *i
	clone.PasswordHash = ""
	clone.Roles = append([]Role(nil), i.Roles...)
	return &clone
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
