package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/pressgate/internal/lib/jwt"
	"github.com/pressgate/pressgate/internal/lib/password"
	"github.com/pressgate/pressgate/internal/models"
	"github.com/pressgate/pressgate/internal/storage/repository"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUserWithProfile(ctx context.Context, user models.User, profile models.Profile) (uuid.UUID, error) {
	args := m.Called(ctx, user, profile)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type ProfilesMock struct{ mock.Mock }

func (m *ProfilesMock) GetProfileByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func notFound() error {
	return fmt.Errorf("storage.GetUserByEmail: %w", sql.ErrNoRows)
}

func TestRegister(t *testing.T) {
	userUID := uuid.New()

	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, notFound())
	users.On("RegisterUserWithProfile", mock.Anything,
		mock.MatchedBy(func(u models.User) bool {
			return u.Email == "new@example.com" && u.PasswordHash != "" && u.PasswordHash != "secret-pass"
		}),
		mock.MatchedBy(func(p models.Profile) bool {
			return p.Role == models.RoleUser && p.FullName == "New User"
		})).Return(userUID, nil)

	maker := jwt.NewJWTMaker("test-secret", time.Minute)
	svc := New(users, new(ProfilesMock), maker)

	token, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret-pass",
		FullName: "New User",
	})
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userUID.String(), claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)

	users.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{UID: uuid.New(), Email: "taken@example.com"}, nil)

	svc := New(users, new(ProfilesMock), jwt.NewJWTMaker("test-secret", time.Minute))

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret-pass",
		FullName: "Someone",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "RegisterUserWithProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_RaceLoserGetsEmailTaken(t *testing.T) {
	// Two sign-ups race past the duplicate-email read; the loser's
	// insert hits the unique constraint and must still surface as
	// ErrEmailTaken, not as an internal error.
	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "raced@example.com").Return(nil, notFound())
	users.On("RegisterUserWithProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.Nil, fmt.Errorf("storage.RegisterUserWithProfile: %w", repository.ErrEmailExists))

	svc := New(users, new(ProfilesMock), jwt.NewJWTMaker("test-secret", time.Minute))

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "raced@example.com",
		Password: "secret-pass",
		FullName: "Racer",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_FailedWriteLeavesEmailUsable(t *testing.T) {
	// A registration whose atomic write fails must leave no trace: the
	// error is not ErrEmailTaken, and a retry of the same email goes
	// through once the store recovers.
	userUID := uuid.New()

	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "retry@example.com").Return(nil, notFound())
	users.On("RegisterUserWithProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.Nil, errors.New("db down")).Once()
	users.On("RegisterUserWithProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(userUID, nil).Once()

	maker := jwt.NewJWTMaker("test-secret", time.Minute)
	svc := New(users, new(ProfilesMock), maker)

	req := models.RegisterRequest{
		Email:    "retry@example.com",
		Password: "secret-pass",
		FullName: "Retry User",
	}

	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)

	token, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userUID.String(), claims.Subject)
}

func TestLogin(t *testing.T) {
	userUID := uuid.New()
	hash, err := password.GetHash("secret-pass")
	require.NoError(t, err)

	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&models.User{UID: userUID, Email: "user@example.com", PasswordHash: hash}, nil)

	profiles := new(ProfilesMock)
	profiles.On("GetProfileByUserUID", mock.Anything, userUID).
		Return(&models.Profile{ID: uuid.New(), UserUID: userUID, Role: models.RoleAdmin}, nil)

	maker := jwt.NewJWTMaker("test-secret", time.Minute)
	svc := New(users, profiles, maker)

	token, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userUID.String(), claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := password.GetHash("secret-pass")
	require.NoError(t, err)

	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&models.User{UID: uuid.New(), PasswordHash: hash}, nil)

	svc := New(users, new(ProfilesMock), jwt.NewJWTMaker("test-secret", time.Minute))

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(UsersMock)
	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, notFound())

	svc := New(users, new(ProfilesMock), jwt.NewJWTMaker("test-secret", time.Minute))

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
