package domain

import "time"

// Permission is the role level carried in tokens and cookies.
type Permission int

const (
	PermissionOrderer Permission = 1
	PermissionManager Permission = 2
	PermissionShop    Permission = 10
	PermissionAdmin   Permission = 99
)

// IsOrderer reports whether p is the lowest-privilege role, the only one
// subject to the once-per-day order rule.
func (p Permission) IsOrderer() bool {
	return p == PermissionOrderer
}

// Valid reports whether p is one of the known role levels.
func (p Permission) Valid() bool {
	switch p {
	case PermissionOrderer, PermissionManager, PermissionShop, PermissionAdmin:
		return true
	}
	return false
}

// Principal models a provisioned user account.
type Principal struct {
	Username     string     `json:"username"`
	Permission   Permission `json:"permission"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PrincipalUpdate is the closed set of mutations a principal accepts.
// Only the types in this package implement it.
type PrincipalUpdate interface {
	isPrincipalUpdate()
}

// SetPasswordHash replaces the stored credential hash.
type SetPasswordHash struct {
	Hash string
}

// SetPermission changes the role level.
type SetPermission struct {
	Permission Permission
}

func (SetPasswordHash) isPrincipalUpdate() {}
func (SetPermission) isPrincipalUpdate()   {}
