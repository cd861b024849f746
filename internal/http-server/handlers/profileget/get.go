// Package profileget implements the handler returning the caller's own
// profile together with the cached subscription status.
package profileget

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
)

// Subscriptions reads the cached subscription state.
type Subscriptions interface {
	GetSubscriptionStatusByProfileID(ctx context.Context, profileID uuid.UUID) (string, error)
}

// Handler serves GET /profile.
type Handler struct {
	log  *slog.Logger
	subs Subscriptions
}

// New creates a Handler.
func New(log *slog.Logger, subs Subscriptions) *Handler {
	return &Handler{
		log:  log,
		subs: subs,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profileget"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	profile := mware.ProfileFromContext(r.Context())
	if profile == nil {
		log.Error("profile not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	// No subscription row means the user never checked out.
	status, err := h.subs.GetSubscriptionStatusByProfileID(r.Context(), profile.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to read subscription status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to read profile"))
			return
		}
		status = "none"
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"profile":             profile,
		"subscription_status": status,
	}))
}
