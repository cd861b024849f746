// Package profile holds the business logic for platform profiles: self
// service updates and the admin user management screens.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/models"
)

// ErrNotFound is returned when the requested profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Repository is the storage contract for profiles.
type Repository interface {
	GetProfileByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfileFullName(ctx context.Context, userUID uuid.UUID, fullName string) (int, error)
	UpdateProfileRole(ctx context.Context, id uuid.UUID, role string) (int, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error)
}

// Service implements profile reads and updates.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New creates a profile Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// GetByUserUID returns the profile linked to an identity uid.
func (s *Service) GetByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error) {
	const op = "profile.GetByUserUID"

	p, err := s.repo.GetProfileByUserUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateFullName sets the caller's display name and returns the updated
// profile.
func (s *Service) UpdateFullName(ctx context.Context, userUID uuid.UUID, fullName string) (*models.Profile, error) {
	const op = "profile.UpdateFullName"

	affected, err := s.repo.UpdateProfileFullName(ctx, userUID, fullName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetByUserUID(ctx, userUID)
}

// UpdateRole sets a profile's role. Admin only; the handler enforces
// that.
func (s *Service) UpdateRole(ctx context.Context, profileID uuid.UUID, role string) error {
	const op = "profile.UpdateRole"

	affected, err := s.repo.UpdateProfileRole(ctx, profileID, role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.log.Info("profile role updated",
		slog.String("profile_id", profileID.String()),
		slog.String("role", role))
	return nil
}

// ListUsers returns profiles newest first for the admin screen.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	const op = "profile.ListUsers"

	result, err := s.repo.ListProfiles(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
