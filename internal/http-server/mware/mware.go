// Package mware contains the HTTP middleware: bearer token checks,
// viewer resolution for the public read path, the admin gate and a
// request rate limiter.
package mware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pressgate/pressgate/internal/http-server/response"
	"github.com/pressgate/pressgate/internal/lib/jwt"
	"github.com/pressgate/pressgate/internal/lib/sl"
	"github.com/pressgate/pressgate/internal/models"
)

type ctxKey string

const profileKey ctxKey = "profile"

// ProfileProvider resolves the authenticated identity to its profile.
type ProfileProvider interface {
	GetByUserUID(ctx context.Context, userUID uuid.UUID) (*models.Profile, error)
}

// ProfileFromContext returns the profile stored by the auth middleware,
// or nil for anonymous requests.
func ProfileFromContext(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(profileKey).(*models.Profile)
	return p
}

// WithProfile returns a context carrying the given profile. Exported for
// handler tests.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func resolveProfile(r *http.Request, jwtMaker jwt.Maker, profiles ProfileProvider) (*models.Profile, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, nil
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := jwtMaker.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	userUID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, err
	}
	return profiles.GetByUserUID(r.Context(), userUID)
}

// JWTMiddleware requires a valid bearer token, resolves the caller's
// profile and stores it in the request context.
func JWTMiddleware(jwtMaker jwt.Maker, profiles ProfileProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			profile, err := resolveProfile(r, jwtMaker, profiles)
			if err != nil || profile == nil {
				if err != nil {
					log.Error("invalid or expired token", sl.Err(err))
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}

// OptionalJWTMiddleware resolves the caller's profile when a valid bearer
// token is present and continues anonymously otherwise. Used by the
// public post read path, where the viewer is an optional input rather
// than a requirement.
func OptionalJWTMiddleware(jwtMaker jwt.Maker, profiles ProfileProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.OptionalJWTMiddleware"

			profile, err := resolveProfile(r, jwtMaker, profiles)
			if err != nil {
				// A bad token on a public page degrades to anonymous.
				log.With(slog.String("op", op)).Info("ignoring invalid token on public path", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if profile != nil {
				r = r.WithContext(WithProfile(r.Context(), profile))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware rejects callers whose profile does not hold the admin
// role. Must run after JWTMiddleware.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.AdminMiddleware"

			profile := ProfileFromContext(r.Context())
			if profile == nil || !profile.IsAdmin() {
				log.With(slog.String("op", op)).Error("admin access denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var limiter = rate.NewLimiter(20, 40)

// RateLimitMiddleware rejects requests above the global rate.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
