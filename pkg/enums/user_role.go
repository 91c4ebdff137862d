package enums

import (
	"fmt"
	"strings"
)

// UserRole is the account-level role stored on users.role.
type UserRole string

const (
	UserRoleSuperAdmin UserRole = "super_admin"
	UserRoleAdmin      UserRole = "admin"
	UserRoleAgent      UserRole = "agent"
	UserRoleCustomer   UserRole = "customer"
	// UserRolePowerAdmin predates super_admin. Rows still carry it.
	UserRolePowerAdmin UserRole = "poweradmin"
)

var validUserRoles = []UserRole{
	UserRoleSuperAdmin,
	UserRoleAdmin,
	UserRoleAgent,
	UserRoleCustomer,
	UserRolePowerAdmin,
}

// UserRoles returns every accepted role in declaration order.
func UserRoles() []UserRole {
	out := make([]UserRole, len(validUserRoles))
	copy(out, validUserRoles)
	return out
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role may use the admin-only endpoints.
func (r UserRole) IsAdmin() bool {
	switch r {
	case UserRoleSuperAdmin, UserRoleAdmin, UserRolePowerAdmin:
		return true
	}
	return false
}

// ParseUserRole trims and lower-cases value before matching it.
func ParseUserRole(value string) (UserRole, error) {
	normalized := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// UserStatus is the free-form account status. Only active is assigned today.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

func (s UserStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UserStatus.
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}
