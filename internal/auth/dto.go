package auth

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Lastname string  `json:"lastname" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	Phone    string  `json:"phone" validate:"required,max=32"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,max=32"`
}

// SessionResponse is returned by login and register. The token is also set as a cookie.
type SessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *users.UserDTO `json:"user"`
}
