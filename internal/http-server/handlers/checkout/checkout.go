// Package checkout implements the handler that starts a subscription
// purchase. It asks the payment provider for a hosted checkout session
// and embeds the caller's identity uid in the session metadata, which is
// what later lets the webhook events find their way back to the profile.
package checkout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/pressgate/pressgate/internal/billing"
	"github.com/pressgate/pressgate/internal/config"
	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/sl"
)

// Provider creates checkout sessions at the payment provider.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req billing.CreateCheckoutSessionRequest) (*billing.CheckoutSession, error)
}

// Handler serves POST /billing/checkout.
type Handler struct {
	log      *slog.Logger
	provider Provider
	cfg      config.Billing
}

// New creates a Handler.
func New(log *slog.Logger, provider Provider, cfg config.Billing) *Handler {
	return &Handler{
		log:      log,
		provider: provider,
		cfg:      cfg,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller := mware.ProfileFromContext(r.Context())
	if caller == nil {
		log.Error("profile not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	session, err := h.provider.CreateCheckoutSession(r.Context(), billing.CreateCheckoutSessionRequest{
		PriceID:    h.cfg.PriceID,
		Mode:       "subscription",
		SuccessURL: h.cfg.CheckoutSuccess,
		CancelURL:  h.cfg.CheckoutCancel,
		Metadata: map[string]string{
			billing.MetadataUserUID: caller.UserUID.String(),
		},
	})
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created",
		slog.String("session_id", session.ID),
		slog.String("user_uid", caller.UserUID.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	}))
}
