package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/models"
)

// UpsertSubscription writes the cached subscription state for a profile.
// Keyed by user_id, so redelivery of the same provider event leaves the
// table unchanged, and a second event for the same profile overwrites the
// prior row (last-write-wins, the provider is the source of truth).
// A single conditional write; two racing notifications cannot lose an
// update the way a read-modify-write pair could.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, provider_customer_id, provider_subscription_id,
			      status, current_period_start, current_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id) DO UPDATE
			  SET provider_customer_id = EXCLUDED.provider_customer_id,
			      provider_subscription_id = EXCLUDED.provider_subscription_id,
			      status = EXCLUDED.status,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query,
		sub.UserID, sub.ProviderCustomerID, sub.ProviderSubscriptionID,
		sub.Status, sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscriptionStatusByRef sets the status of the row holding the
// given provider subscription reference and returns the number of
// affected rows. Zero affected rows is not an error; callers treat it as
// a no-op for idempotence under redelivery.
func (s *Storage) UpdateSubscriptionStatusByRef(ctx context.Context, subscriptionRef, status string) (int, error) {
	const op = "storage.UpdateSubscriptionStatusByRef"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, updated_at = now()
			  WHERE provider_subscription_id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, subscriptionRef)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetSubscriptionStatusByProfileID returns the cached status for a
// profile. Returns sql.ErrNoRows (wrapped) when the profile has no
// subscription row.
func (s *Storage) GetSubscriptionStatusByProfileID(ctx context.Context, profileID uuid.UUID) (string, error) {
	const op = "storage.GetSubscriptionStatusByProfileID"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT status FROM subscriptions WHERE user_id = $1`
	var status string
	if err := s.DB.QueryRowContext(ctx, query, profileID).Scan(&status); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

// GetSubscriptionByProfileID returns the full cached row for a profile.
func (s *Storage) GetSubscriptionByProfileID(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByProfileID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, provider_customer_id, provider_subscription_id,
			      status, current_period_start, current_period_end, created_at, updated_at
			  FROM subscriptions
			  WHERE user_id = $1`
	var sub models.Subscription
	row := s.DB.QueryRowContext(ctx, query, profileID)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.ProviderCustomerID,
		&sub.ProviderSubscriptionID, &sub.Status, &sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}
