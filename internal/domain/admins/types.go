package admins

import "time"

// Roles form a small closed set; there is no hierarchy.
const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRole reports whether role is a member of the closed role set.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}

// RoleAllowed is the pure predicate used by the role-check middleware stage.
func RoleAllowed(role string, allowed []string) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// Admin is an administrator account. PasswordHash never crosses the API
// boundary.
type Admin struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// RegisterParams carries the fields for creating a new administrator.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Role     string
}
