package postupdate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/models"
	"github.com/pressgate/pressgate/internal/services/post"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, actor *models.Profile, id uuid.UUID, req models.UpdatePostRequest) (*models.Post, error) {
	args := m.Called(ctx, actor, id, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := &models.Profile{ID: uuid.New(), Role: models.RoleUser}
	postID := uuid.New()

	tests := []struct {
		name           string
		urlID          string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "successful update",
			urlID: postID.String(),
			body:  `{"title":"Edited","content":"Body","status":"published"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, postID, mock.Anything).
					Return(&models.Post{ID: postID, Title: "Edited"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Edited"`,
		},
		{
			name:           "invalid post id",
			urlID:          "42",
			body:           `{"title":"Edited","content":"Body","status":"draft"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid post id",
		},
		{
			name:  "not the author",
			urlID: postID.String(),
			body:  `{"title":"Edited","content":"Body","status":"draft"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, postID, mock.Anything).
					Return(nil, post.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "not the author",
		},
		{
			name:  "unknown post",
			urlID: postID.String(),
			body:  `{"title":"Edited","content":"Body","status":"draft"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, postID, mock.Anything).
					Return(nil, post.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "post not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/dashboard/posts/"+tt.urlID, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = mware.WithProfile(ctx, actor)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
