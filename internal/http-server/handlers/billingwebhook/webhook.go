// Package billingwebhook implements the endpoint the payment provider
// delivers subscription lifecycle events to. The signature gate runs
// before anything else touches state; an unsigned or mis-signed request
// changes nothing. Processing failures answer 500 so the provider
// retries the delivery, which the reconciler tolerates because every
// transition it applies is idempotent.
package billingwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pressgate/pressgate/internal/billing"
	"github.com/pressgate/pressgate/internal/lib/sl"
)

// SignatureHeader carries the provider's HMAC of the raw request body.
const SignatureHeader = "X-Api-Signature"

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "billing_webhook_events_total",
	Help: "Webhook deliveries by outcome.",
}, []string{"result"})

// Service applies a verified provider event to local state.
type Service interface {
	Apply(ctx context.Context, event billing.Event) error
}

// Handler serves POST /billing/webhook.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New creates a Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billingwebhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		eventsTotal.WithLabelValues("malformed").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		eventsTotal.WithLabelValues("unauthorized").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var event billing.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		eventsTotal.WithLabelValues("malformed").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.Apply(r.Context(), event); err != nil {
		log.Error("failed to apply webhook event", sl.Err(err))
		eventsTotal.WithLabelValues("failed").Inc()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type))
	eventsTotal.WithLabelValues("ok").Inc()
	w.WriteHeader(http.StatusOK)
}
