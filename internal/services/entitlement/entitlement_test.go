package entitlement

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

	"github.com/pressgate/pressgate/internal/models"
)

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) GetSubscriptionStatusByProfileID(ctx context.Context, profileID uuid.UUID) (string, error) {
	args := m.Called(ctx, profileID)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecide(t *testing.T) {
	viewer := &models.Profile{ID: uuid.New()}

	tests := []struct {
		name      string
		post      models.Post
		viewer    *models.Profile
		status    string
		wantGrant bool
	}{
		{"free post, anonymous viewer", models.Post{IsPremium: false}, nil, "", true},
		{"free post, signed-in viewer", models.Post{IsPremium: false}, viewer, "", true},
		{"free post, active subscriber", models.Post{IsPremium: false}, viewer, "active", true},
		{"premium post, anonymous viewer", models.Post{IsPremium: true}, nil, "", false},
		{"premium post, active subscriber", models.Post{IsPremium: true}, viewer, "active", true},
		{"premium post, canceled subscription", models.Post{IsPremium: true}, viewer, "canceled", false},
		{"premium post, past_due subscription", models.Post{IsPremium: true}, viewer, "past_due", false},
		{"premium post, no subscription row", models.Post{IsPremium: true}, viewer, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.post, tt.viewer, tt.status)
			assert.Equal(t, tt.wantGrant, got.GrantFull)
		})
	}
}

func TestCanView_FreePostSkipsLookup(t *testing.T) {
	repo := new(SubsRepoMock)
	svc := New(repo, discardLogger())

	got := svc.CanView(context.Background(), models.Post{IsPremium: false}, &models.Profile{ID: uuid.New()})

	assert.True(t, got.GrantFull)
	repo.AssertNotCalled(t, "GetSubscriptionStatusByProfileID")
}

func TestCanView_PremiumAnonymousDenied(t *testing.T) {
	repo := new(SubsRepoMock)
	svc := New(repo, discardLogger())

	got := svc.CanView(context.Background(), models.Post{IsPremium: true}, nil)

	assert.False(t, got.GrantFull)
	repo.AssertNotCalled(t, "GetSubscriptionStatusByProfileID")
}

func TestCanView_PremiumActiveGranted(t *testing.T) {
	viewer := &models.Profile{ID: uuid.New()}
	repo := new(SubsRepoMock)
	repo.On("GetSubscriptionStatusByProfileID", mock.Anything, viewer.ID).Return("active", nil)
	svc := New(repo, discardLogger())

	got := svc.CanView(context.Background(), models.Post{IsPremium: true}, viewer)

	assert.True(t, got.GrantFull)
	repo.AssertExpectations(t)
}

func TestCanView_NoRowMeansDeny(t *testing.T) {
	viewer := &models.Profile{ID: uuid.New()}
	repo := new(SubsRepoMock)
	repo.On("GetSubscriptionStatusByProfileID", mock.Anything, viewer.ID).
		Return("", fmt.Errorf("storage.GetSubscriptionStatusByProfileID: %w", sql.ErrNoRows))
	svc := New(repo, discardLogger())

	got := svc.CanView(context.Background(), models.Post{IsPremium: true}, viewer)

	assert.False(t, got.GrantFull)
}

func TestCanView_LookupErrorFailsClosed(t *testing.T) {
	viewer := &models.Profile{ID: uuid.New()}
	repo := new(SubsRepoMock)
	repo.On("GetSubscriptionStatusByProfileID", mock.Anything, viewer.ID).
		Return("", errors.New("connection refused"))
	svc := New(repo, discardLogger())

	got := svc.CanView(context.Background(), models.Post{IsPremium: true}, viewer)

	assert.False(t, got.GrantFull)
}
