// Package postlist implements the public post listing. It returns
// summaries only, so premium content never leaves the server through the
// listing regardless of who asks.
package postlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
)

// Service lists published posts.
type Service interface {
	ListPublished(ctx context.Context, limit, offset int) ([]*models.PostWithAuthor, error)
}

// Handler serves GET /posts.
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

// Summary is the listing shape: everything about a post except its body.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	Slug       *string   `json:"slug,omitempty"`
	IsPremium  bool      `json:"is_premium"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.postlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pagination(r)

	posts, err := h.service.ListPublished(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list posts"))
		return
	}

	summaries := make([]Summary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, Summary{
			ID:         p.ID,
			Title:      p.Title,
			Excerpt:    p.Excerpt,
			Slug:       p.Slug,
			IsPremium:  p.IsPremium,
			AuthorName: p.AuthorName,
			CreatedAt:  p.CreatedAt,
		})
	}

	log.Info("listed posts", slog.Int("count", len(summaries)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(summaries),
		"posts":      summaries,
	}))
}

func pagination(r *http.Request) (limit, offset int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err = strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
