package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pressgate/pressgate/internal/models"
)

// ErrEmailExists is returned (wrapped) when the email already has an
// identity. Registration relies on the unique constraint rather than a
// prior read, so two concurrent sign-ups for the same email cannot both
// succeed.
var ErrEmailExists = errors.New("email already registered")

const uniqueViolationCode = "23505"

// RegisterUserWithProfile stores a new authentication identity together
// with its profile in one transaction and returns the identity uid.
// Either both rows exist afterwards or neither does; a half-registered
// identity with no profile can never be observed.
func (s *Storage) RegisterUserWithProfile(ctx context.Context, user models.User, profile models.Profile) (uuid.UUID, error) {
	const op = "storage.RegisterUserWithProfile"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var newUID uuid.UUID
	query := `INSERT INTO users (email, password_hash)
			  VALUES ($1, $2)
			  RETURNING uid`
	if err := tx.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmailExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO profiles (user_uid, email, full_name, role)
			 VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query,
		newUID, profile.Email, profile.FullName, profile.Role); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail returns the identity registered under the given email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
