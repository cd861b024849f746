// Package dashboardposts implements the listing of the caller's own
// posts, drafts included.
package dashboardposts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
)

// Service lists an author's posts.
type Service interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*models.Post, error)
}

// Handler serves GET /dashboard/posts.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboardposts"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	author := mware.ProfileFromContext(r.Context())
	if author == nil {
		log.Error("profile not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	posts, err := h.service.ListByAuthor(r.Context(), author.ID, limit, offset)
	if err != nil {
		log.Error("failed to list own posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list posts"))
		return
	}

	log.Info("listed own posts", slog.Int("count", len(posts)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(posts),
		"posts":      posts,
	}))
}
