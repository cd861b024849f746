// Package auth holds registration and login over the local identity
// store.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/lib/jwt"
	"github.com/pressgate/pressgate/internal/lib/password"
	"github.com/pressgate/pressgate/internal/models"
	"github.com/pressgate/pressgate/internal/storage/repository"
)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when registering an email that already has an
// identity.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository stores authentication identities. The registration
// write covers identity and profile together: partial sign-ups must not
// be observable, so the two rows go in one transaction.
type UserRepository interface {
	RegisterUserWithProfile(ctx context.Context, user models.User, profile models.Profile) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProfileRepository reads the platform profiles linked to identities.
type ProfileRepository interface {
	GetProfileByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error)
}

// Service implements sign-up and sign-in.
type Service struct {
	users    UserRepository
	profiles ProfileRepository
	jwtMaker jwt.Maker
}

// New creates an auth Service.
func New(users UserRepository, profiles ProfileRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		jwtMaker: jwtMaker,
	}
}

// Register creates an identity with a hashed password and its profile
// (exactly one per identity, role "user") in a single atomic write, then
// issues a token so the caller is signed in immediately. The early
// duplicate-email read is only a fast path; the unique constraint is
// what actually decides a race between two sign-ups, so the losing
// insert also maps to ErrEmailTaken.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	userUID, err := s.users.RegisterUserWithProfile(ctx,
		models.User{
			Email:        req.Email,
			PasswordHash: hashed,
		},
		models.Profile{
			Email:    req.Email,
			FullName: req.FullName,
			Role:     models.RoleUser,
		})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(userUID.String(), models.RoleUser)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Login checks credentials and issues a token carrying the identity uid
// and the profile role.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", ErrInvalidCredentials
	}

	profile, err := s.profiles.GetProfileByUserUID(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID.String(), profile.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
