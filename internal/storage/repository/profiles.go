package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pressgate/pressgate/internal/models"
)

// GetProfileByUserUID returns the profile linked to an identity uid.
func (s *Storage) GetProfileByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error) {
	const op = "storage.GetProfileByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, full_name, role, created_at, updated_at
			  FROM profiles
			  WHERE user_uid = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&p.ID, &p.UserUID, &p.Email, &p.FullName, &p.Role,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetProfileByID returns a profile by its own id.
func (s *Storage) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const op = "storage.GetProfileByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, full_name, role, created_at, updated_at
			  FROM profiles
			  WHERE id = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.UserUID, &p.Email, &p.FullName, &p.Role,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProfileFullName updates the display name of a profile and returns
// the number of affected rows.
func (s *Storage) UpdateProfileFullName(ctx context.Context, userUID uuid.UUID, fullName string) (int, error) {
	const op = "storage.UpdateProfileFullName"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET full_name = $1, updated_at = now()
			  WHERE user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, fullName, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateProfileRole sets the role of a profile and returns the number of
// affected rows.
func (s *Storage) UpdateProfileRole(ctx context.Context, id uuid.UUID, role string) (int, error) {
	const op = "storage.UpdateProfileRole"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET role = $1, updated_at = now()
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, role, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListProfiles returns profiles ordered by creation time, newest first.
func (s *Storage) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	const op = "storage.ListProfiles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, email, full_name, role, created_at, updated_at
			  FROM profiles
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.UserUID, &p.Email, &p.FullName, &p.Role,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
