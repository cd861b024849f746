// Package reconciler applies provider lifecycle events to the locally
// cached subscription state. The provider delivers at least once; every
// transition here is idempotent so redelivery converges on the same row.
package reconciler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/billing"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
)

// ProfileRepository resolves the correlation identifier carried in event
// metadata to a local profile.
type ProfileRepository interface {
	GetProfileByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error)
}

// SubscriptionRepository writes the cached subscription state.
type SubscriptionRepository interface {
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	UpdateSubscriptionStatusByRef(ctx context.Context, subscriptionRef, status string) (int, error)
}

// Service routes provider events to the matching transition.
type Service struct {
	profiles ProfileRepository
	subs     SubscriptionRepository
	log      *slog.Logger
}

// New creates a reconciler Service.
func New(profiles ProfileRepository, subs SubscriptionRepository, log *slog.Logger) *Service {
	return &Service{
		profiles: profiles,
		subs:     subs,
		log:      log,
	}
}

// Apply dispatches one verified event. Unknown kinds are logged and
// ignored. A nil return tells the transport to acknowledge so the
// provider stops retrying; an error return means the provider should
// redeliver.
func (s *Service) Apply(ctx context.Context, event billing.Event) error {
	const op = "reconciler.Apply"
	log := s.log.With(slog.String("op", op), slog.String("event_type", event.Type))

	switch event.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated:
		return s.applySubscriptionChange(ctx, log, event)
	case billing.EventSubscriptionDeleted:
		return s.applySubscriptionCancellation(ctx, log, event)
	case billing.EventInvoicePaymentSucceeded:
		return s.applyPaymentSuccess(ctx, log, event)
	default:
		log.Info("ignored unknown event kind")
		return nil
	}
}

// applySubscriptionChange upserts the cached row for the profile named by
// the correlation identifier. The row is keyed by profile, so the latest
// event for a profile wins regardless of which provider subscription it
// describes.
func (s *Service) applySubscriptionChange(ctx context.Context, log *slog.Logger, event billing.Event) error {
	const op = "reconciler.applySubscriptionChange"

	var obj billing.SubscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rawUID, ok := obj.Metadata[billing.MetadataUserUID]
	if !ok || rawUID == "" {
		// Nothing to retry: the correlation id is missing, not delayed.
		log.Error("no user uid in subscription metadata, dropping event",
			slog.String("subscription_ref", obj.ID))
		return nil
	}
	userUID, err := uuid.Parse(rawUID)
	if err != nil {
		log.Error("malformed user uid in subscription metadata, dropping event",
			slog.String("subscription_ref", obj.ID), sl.Err(err))
		return nil
	}

	profile, err := s.profiles.GetProfileByUserUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Error("profile not found for user uid, dropping event",
				slog.String("user_uid", rawUID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	sub := models.Subscription{
		UserID:                 profile.ID,
		ProviderCustomerID:     obj.Customer,
		ProviderSubscriptionID: obj.ID,
		Status:                 obj.Status,
		CurrentPeriodStart:     unixTime(obj.CurrentPeriodStart),
		CurrentPeriodEnd:       unixTime(obj.CurrentPeriodEnd),
	}
	if err := s.subs.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("subscription state upserted",
		slog.String("profile_id", profile.ID.String()),
		slog.String("subscription_ref", obj.ID),
		slog.String("status", obj.Status))
	return nil
}

// applySubscriptionCancellation marks the row holding the provider
// subscription reference as canceled. No matching row is a no-op.
func (s *Service) applySubscriptionCancellation(ctx context.Context, log *slog.Logger, event billing.Event) error {
	const op = "reconciler.applySubscriptionCancellation"

	var obj billing.SubscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if obj.ID == "" {
		// An empty reference would match rows still holding the column
		// default, canceling subscriptions the event never named.
		log.Info("cancellation without subscription reference, nothing to do",
			slog.String("event_id", event.ID))
		return nil
	}

	affected, err := s.subs.UpdateSubscriptionStatusByRef(ctx, obj.ID, models.SubscriptionStatusCanceled)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Info("no local row for canceled subscription, nothing to do",
			slog.String("subscription_ref", obj.ID))
		return nil
	}

	log.Info("subscription canceled", slog.String("subscription_ref", obj.ID))
	return nil
}

// applyPaymentSuccess reactivates the row the paid invoice belongs to.
// Invoices without a subscription reference and unmatched references are
// no-ops.
func (s *Service) applyPaymentSuccess(ctx context.Context, log *slog.Logger, event billing.Event) error {
	const op = "reconciler.applyPaymentSuccess"

	var obj billing.InvoiceObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if obj.Subscription == "" {
		log.Info("invoice without subscription reference, nothing to do",
			slog.String("invoice_id", obj.ID))
		return nil
	}

	affected, err := s.subs.UpdateSubscriptionStatusByRef(ctx, obj.Subscription, models.SubscriptionStatusActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		log.Info("no local row for paid subscription, nothing to do",
			slog.String("subscription_ref", obj.Subscription))
		return nil
	}

	log.Info("subscription reactivated", slog.String("subscription_ref", obj.Subscription))
	return nil
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
