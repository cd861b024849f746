// Package postread implements the public single-post page. The post is
// looked up by slug, the viewer is whatever the optional auth middleware
// resolved, and the entitlement decision picks between the full body and
// the locked preview. A premium body is only written to the response
// after an explicit grant.
package postread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
	"github.com/pressgate/pressgate/internal/services/entitlement"
	"github.com/pressgate/pressgate/internal/services/post"
)

// Service reads published posts.
type Service interface {
	GetPublishedBySlug(ctx context.Context, slug string) (*models.PostWithAuthor, error)
}

// Entitlements decides whether the viewer gets the full body.
type Entitlements interface {
	CanView(ctx context.Context, post models.Post, viewer *models.Profile) entitlement.Decision
}

// Handler serves GET /posts/{slug}.
type Handler struct {
	log          *slog.Logger
	service      Service
	entitlements Entitlements
}

// New creates a Handler.
func New(log *slog.Logger, service Service, entitlements Entitlements) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		entitlements: entitlements,
	}
}

// View is the single-post response shape. Content holds the full body
// only when Locked is false; for a locked premium post it carries the
// excerpt, which may be empty.
type View struct {
	models.PostWithAuthor
	Locked bool `json:"locked"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.postread"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing slug"))
		return
	}

	found, err := h.service.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("post not found"))
			return
		}
		log.Error("failed to read post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read post"))
		return
	}

	viewer := mware.ProfileFromContext(r.Context())
	decision := h.entitlements.CanView(r.Context(), found.Post, viewer)

	view := View{PostWithAuthor: *found}
	if !decision.GrantFull {
		view.Locked = true
		view.Content = ""
		if found.Excerpt != nil {
			view.Content = *found.Excerpt
		}
	}

	log.Info("post read",
		slog.String("slug", slug),
		slog.Bool("locked", view.Locked))
	render.JSON(w, r, response.StatusOKWithData(view))
}
