package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pressgate/pressgate/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetProfileByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *RepoMock) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *RepoMock) UpdateProfileFullName(ctx context.Context, userUID uuid.UUID, fullName string) (int, error) {
	args := m.Called(ctx, userUID, fullName)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdateProfileRole(ctx context.Context, id uuid.UUID, role string) (int, error) {
	args := m.Called(ctx, id, role)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func newService(repo *RepoMock) *Service {
	return New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetByUserUID_NotFound(t *testing.T) {
	uid := uuid.New()
	repo := new(RepoMock)
	repo.On("GetProfileByUserUID", mock.Anything, uid).
		Return(nil, fmt.Errorf("storage.GetProfileByUserUID: %w", sql.ErrNoRows))

	_, err := newService(repo).GetByUserUID(context.Background(), uid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFullName(t *testing.T) {
	uid := uuid.New()
	updated := &models.Profile{ID: uuid.New(), UserUID: uid, FullName: "New Name"}

	repo := new(RepoMock)
	repo.On("UpdateProfileFullName", mock.Anything, uid, "New Name").Return(1, nil)
	repo.On("GetProfileByUserUID", mock.Anything, uid).Return(updated, nil)

	got, err := newService(repo).UpdateFullName(context.Background(), uid, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	repo.AssertExpectations(t)
}

func TestUpdateRole(t *testing.T) {
	id := uuid.New()
	repo := new(RepoMock)
	repo.On("UpdateProfileRole", mock.Anything, id, models.RoleAdmin).Return(1, nil)

	require.NoError(t, newService(repo).UpdateRole(context.Background(), id, models.RoleAdmin))
	repo.AssertExpectations(t)
}

func TestUpdateRole_UnknownProfile(t *testing.T) {
	id := uuid.New()
	repo := new(RepoMock)
	repo.On("UpdateProfileRole", mock.Anything, id, models.RoleAdmin).Return(0, nil)

	err := newService(repo).UpdateRole(context.Background(), id, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers_StoreError(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListProfiles", mock.Anything, 50, 0).Return(nil, errors.New("db down"))

	_, err := newService(repo).ListUsers(context.Background(), 50, 0)
	assert.Error(t, err)
}
