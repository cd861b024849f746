package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a profile can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is the platform user record, kept separate from the
// authentication identity it links to. Exactly one profile exists per
// identity; it is created on first sign-up.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserUID   uuid.UUID `json:"user_uid"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile holds the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UpdateProfileRequest is the JSON body for updating the caller's profile.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

// UpdateRoleRequest is the JSON body for the admin role-change endpoint.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
