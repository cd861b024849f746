package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pressgate/pressgate/internal/models"
)

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE profiles (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_uid UUID NOT NULL UNIQUE REFERENCES users(uid),
            email TEXT NOT NULL,
            full_name TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'user',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE posts (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            excerpt TEXT,
            author_id UUID NOT NULL REFERENCES profiles(id),
            is_premium BOOLEAN NOT NULL DEFAULT false,
            status TEXT NOT NULL DEFAULT 'draft',
            slug TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE UNIQUE INDEX idx_posts_published_slug ON posts (slug) WHERE status = 'published';

        CREATE TABLE subscriptions (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL UNIQUE REFERENCES profiles(id),
            provider_customer_id TEXT NOT NULL DEFAULT '',
            provider_subscription_id TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT '',
            current_period_start TIMESTAMPTZ,
            current_period_end TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
    `)
	require.NoError(t, err, "failed to create schema")

	cleanup := func() {
		storage.DB.Close()
		_ = postgresContainer.Terminate(ctx)
	}
	return storage, cleanup
}

// TestDataFactory seeds rows for the integration tests.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateIdentity inserts a users row and returns its uid.
func (f *TestDataFactory) CreateIdentity(t *testing.T, email string) uuid.UUID {
	uid := uuid.New()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, password_hash)
		VALUES ($1, $2, $3)`,
		uid, email, "hashedpassword")
	require.NoError(t, err)
	return uid
}

// CreateProfile inserts a profiles row linked to an identity and returns
// its id.
func (f *TestDataFactory) CreateProfile(t *testing.T, userUID uuid.UUID, email, fullName, role string) uuid.UUID {
	var id uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO profiles (user_uid, email, full_name, role)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		userUID, email, fullName, role).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateReader inserts an identity with a profile and returns the
// profile id.
func (f *TestDataFactory) CreateReader(t *testing.T, email string) uuid.UUID {
	uid := f.CreateIdentity(t, email)
	return f.CreateProfile(t, uid, email, "Test Reader", models.RoleUser)
}

// CreatePost inserts a posts row and returns its id.
func (f *TestDataFactory) CreatePost(t *testing.T, authorID uuid.UUID, title, status string, isPremium bool, slug *string) uuid.UUID {
	var id uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO posts (title, content, excerpt, author_id, is_premium, status, slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		title, "post body", "post excerpt", authorID, isPremium, status, slug).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription inserts a subscriptions row directly.
func (f *TestDataFactory) CreateSubscription(t *testing.T, profileID uuid.UUID, customerID, subscriptionRef, status string) {
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions
		(user_id, provider_customer_id, provider_subscription_id, status)
		VALUES ($1, $2, $3, $4)`,
		profileID, customerID, subscriptionRef, status)
	require.NoError(t, err)
}
