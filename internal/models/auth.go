package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	Role         UserRole `json:"role"`
	DepartmentID *string  `json:"department_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. DepartmentID
// identifies the department every scan recorded by this actor belongs to.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	DepartmentID string   `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}
