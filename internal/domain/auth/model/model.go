package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Permission struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID                uuid.UUID
	Email             *string
	PasswordHash      string
	FirstName         string
	LastName          string
	Roles             []Role
	DirectPermissions []Permission
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RoleNames returns the names of all roles assigned to the user.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// EffectivePermissions is the deduplicated union of role and direct permissions, sorted.
func (u User) EffectivePermissions() []string {
	set := make(map[string]struct{})
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			set[p.Name] = struct{}{}
		}
	}
	for _, p := range u.DirectPermissions {
		set[p.Name] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Identity is the authenticated caller as seen by guards and handlers.
// It is what gets cached under user:{id}.
type Identity struct {
	ID                  uuid.UUID `json:"id"`
	Email               *string   `json:"email"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	Roles               []string  `json:"roles"`
	ComputedPermissions []string  `json:"computedPermissions"`
}

func NewIdentity(u User) Identity {
	return Identity{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Roles:               u.RoleNames(),
		ComputedPermissions: u.EffectivePermissions(),
	}
}

// HasPermission reports whether name is among the identity's computed permissions.
func (i Identity) HasPermission(name string) bool {
	for _, p := range i.ComputedPermissions {
		if p == name {
			return true
		}
	}
	return false
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserId       uuid.UUID
	TokenID      string
}

type Page struct {
	Page  int
	Take  int
	Total int64
}
