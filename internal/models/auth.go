package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds directory credentials.
type LoginRequest struct {
	Username  string `json:"username" validate:"required,max=64"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UpdateRoleRequest changes a staff member's role.
type UpdateRoleRequest struct {
	Role UserRole `json:"role" validate:"required,oneof=STAFF SUPERUSER"`
}

// RoleChange is a role update attributed to the superuser making it.
type RoleChange struct {
	UserID    string   `validate:"required"`
	Role      UserRole `validate:"required,oneof=STAFF SUPERUSER"`
	ActorID   string   `validate:"required"`
	IP        string
	UserAgent string
}

// UserInfo is the public projection of a user.
type UserInfo struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Role        UserRole `json:"role"`
}

// JWTClaims defines the access token payload.
type JWTClaims struct {
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
