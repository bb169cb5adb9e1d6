package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperuser UserRole = "SUPERUSER"
	RoleStaff     UserRole = "STAFF"
)

// Valid reports whether the role is known.
func (r UserRole) Valid() bool {
	return r == RoleSuperuser || r == RoleStaff
}

// User is a staff account created on first directory login.
type User struct {
	ID          string     `db:"id" json:"id"`
	Username    string     `db:"username" json:"username"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Role        UserRole   `db:"role" json:"role"`
	Active      bool       `db:"active" json:"active"`
	LastLogin   *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
