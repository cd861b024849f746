// Package postremove implements the dashboard handler for deleting a
// post. Only the post's author or an admin may delete it.
package postremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
	"github.com/pressgate/pressgate/internal/services/post"
)

// Service removes posts.
type Service interface {
	Remove(ctx context.Context, actor *models.Profile, id uuid.UUID) error
}

// Handler serves DELETE /dashboard/posts/{id}.
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
	const op = "handlers.postremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid post id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid post id"))
		return
	}

	actor := mware.ProfileFromContext(r.Context())
	if actor == nil {
		log.Error("profile not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Remove(r.Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, post.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("post not found"))
		case errors.Is(err, post.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("not the author of this post"))
		default:
			log.Error("failed to remove post", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove post"))
		}
		return
	}

	log.Info("post removed", slog.String("post_id", id.String()))
	render.JSON(w, r, response.OK())
}
