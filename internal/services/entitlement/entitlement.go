// Package entitlement decides whether a viewer may see a post's full
// content. The decision is a pure function of the post's premium flag,
// the viewer's presence and the locally cached subscription status; the
// payment provider is never queried on the read path.
package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
)

// SubscriptionRepository reads the cached subscription state.
type SubscriptionRepository interface {
	// GetSubscriptionStatusByProfileID returns the cached status, or a
	// wrapped sql.ErrNoRows when the profile has no subscription row.
	GetSubscriptionStatusByProfileID(ctx context.Context, profileID uuid.UUID) (string, error)
}

// Decision is the render verdict for one post view.
type Decision struct {
	GrantFull bool
}

// Decide is the entitlement truth table:
//   - free posts are fully visible to everyone, anonymous included;
//   - premium posts are hidden from anonymous viewers;
//   - premium posts are visible only when the viewer's cached
//     subscription status is exactly "active".
func Decide(post models.Post, viewer *models.Profile, subscriptionStatus string) Decision {
	if !post.IsPremium {
		return Decision{GrantFull: true}
	}
	if viewer == nil {
		return Decision{GrantFull: false}
	}
	return Decision{GrantFull: subscriptionStatus == models.SubscriptionStatusActive}
}

// Service evaluates entitlement against the subscription cache.
type Service struct {
	subs SubscriptionRepository
	log  *slog.Logger
}

// New creates an entitlement Service.
func New(subs SubscriptionRepository, log *slog.Logger) *Service {
	return &Service{
		subs: subs,
		log:  log,
	}
}

// CanView resolves the viewer's cached subscription status and applies
// Decide. Lookup failures fail closed: the reader gets a paywall, not an
// error page, and the failure is logged.
func (s *Service) CanView(ctx context.Context, post models.Post, viewer *models.Profile) Decision {
	if !post.IsPremium {
		return Decision{GrantFull: true}
	}
	if viewer == nil {
		return Decision{GrantFull: false}
	}

	status, err := s.subs.GetSubscriptionStatusByProfileID(ctx, viewer.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Error("subscription lookup failed, denying premium access",
				slog.String("profile_id", viewer.ID.String()), sl.Err(err))
		}
		return Decision{GrantFull: false}
	}
	return Decide(post, viewer, status)
}
