// Package health implements the liveness endpoint. It reports the
// database as part of the answer so a failing storage layer surfaces in
// monitoring before it surfaces to readers.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
)

// Handler serves GET /health.
type Handler struct {
	log     *slog.Logger
	checkDB func() error
}

// New creates a Handler. checkDB pings the storage layer.
func New(log *slog.Logger, checkDB func() error) *Handler {
	return &Handler{
		log:     log,
		checkDB: checkDB,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.checkDB(); err != nil {
		h.log.With(slog.String("op", op)).Error("database not ready", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
