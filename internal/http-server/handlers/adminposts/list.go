// Package adminposts implements the admin listing of every post in the
// system, drafts included.
package adminposts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
)

// Service lists all posts.
type Service interface {
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
}

// Handler serves GET /admin/posts.
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
	const op = "handlers.adminposts"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	posts, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list posts"))
		return
	}

	log.Info("listed posts", slog.Int("count", len(posts)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(posts),
		"posts":      posts,
	}))
}
