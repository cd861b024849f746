// Package models contains the domain structures of the publishing platform:
// authentication identities, profiles, posts and the locally cached
// subscription state, plus the request types accepted from JSON bodies.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a raw authentication identity. It only carries credentials;
// everything user-facing lives on the Profile linked to it.
type User struct {
	UID          uuid.UUID `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body of the register endpoint.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

// LoginRequest is the JSON body of the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
