package pressgate

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pressgate/pressgate/internal/billing"
	"github.com/pressgate/pressgate/internal/config"
	"github.com/pressgate/pressgate/internal/http-server/handlers/adminposts"
	"github.com/pressgate/pressgate/internal/http-server/handlers/adminrole"
	"github.com/pressgate/pressgate/internal/http-server/handlers/adminusers"
	"github.com/pressgate/pressgate/internal/http-server/handlers/billingwebhook"
	"github.com/pressgate/pressgate/internal/http-server/handlers/checkout"
	"github.com/pressgate/pressgate/internal/http-server/handlers/dashboardposts"
	"github.com/pressgate/pressgate/internal/http-server/handlers/health"
	"github.com/pressgate/pressgate/internal/http-server/handlers/login"
	"github.com/pressgate/pressgate/internal/http-server/handlers/postcreate"
	"github.com/pressgate/pressgate/internal/http-server/handlers/postlist"
	"github.com/pressgate/pressgate/internal/http-server/handlers/postread"
	"github.com/pressgate/pressgate/internal/http-server/handlers/postremove"
	"github.com/pressgate/pressgate/internal/http-server/handlers/postupdate"
	"github.com/pressgate/pressgate/internal/http-server/handlers/profileget"
	"github.com/pressgate/pressgate/internal/http-server/handlers/profileupdate"
	"github.com/pressgate/pressgate/internal/http-server/handlers/register"
	"github.com/pressgate/pressgate/internal/http-server/mware"
	"github.com/pressgate/pressgate/internal/lib/jwt"
	authservice "github.com/pressgate/pressgate/internal/services/auth"
	"github.com/pressgate/pressgate/internal/services/entitlement"
	postservice "github.com/pressgate/pressgate/internal/services/post"
	profileservice "github.com/pressgate/pressgate/internal/services/profile"
	"github.com/pressgate/pressgate/internal/services/reconciler"
	"github.com/pressgate/pressgate/internal/storage/repository"
)

type routeServices struct {
	auth         *authservice.Service
	profiles     *profileservice.Service
	posts        *postservice.Service
	entitlements *entitlement.Service
	reconciler   *reconciler.Service
	billing      *billing.Client
	jwtMaker     jwt.Maker
	db           *repository.Storage
}

// RegisterRoutes registers all routes of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s routeServices) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/register", register.New(logger, s.auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.auth).ServeHTTP)
		r.Get("/posts", postlist.New(logger, s.posts).ServeHTTP)
		r.Get("/health", health.New(logger, func() error {
			return repository.CheckDatabaseReady(s.db)
		}).ServeHTTP)

		// Public read with an optional viewer
		r.Group(func(r chi.Router) {
			r.Use(mware.OptionalJWTMiddleware(s.jwtMaker, s.profiles, logger))
			r.Get("/posts/{slug}", postread.New(logger, s.posts, s.entitlements).ServeHTTP)
		})

		// JWT-gated group
		r.Group(func(r chi.Router) {
			r.Use(mware.JWTMiddleware(s.jwtMaker, s.profiles, logger))
			r.Use(mware.RateLimitMiddleware(logger))
			r.Get("/profile", profileget.New(logger, s.db).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, s.profiles).ServeHTTP)
			r.Get("/dashboard/posts", dashboardposts.New(logger, s.posts).ServeHTTP)
			r.Post("/dashboard/posts", postcreate.New(logger, s.posts).ServeHTTP)
			r.Put("/dashboard/posts/{id}", postupdate.New(logger, s.posts).ServeHTTP)
			r.Delete("/dashboard/posts/{id}", postremove.New(logger, s.posts).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, s.billing, cfg.Billing).ServeHTTP)

			// Admin-only subgroup
			r.Group(func(r chi.Router) {
				r.Use(mware.AdminMiddleware(logger))
				r.Get("/admin/users", adminusers.New(logger, s.profiles).ServeHTTP)
				r.Put("/admin/users/{id}/role", adminrole.New(logger, s.profiles).ServeHTTP)
				r.Get("/admin/posts", adminposts.New(logger, s.posts).ServeHTTP)
			})
		})

		// Webhook endpoint, gated by signature instead of auth
		r.Post("/billing/webhook", billingwebhook.New(logger, s.reconciler, cfg.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
