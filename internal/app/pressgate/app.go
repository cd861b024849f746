// Package pressgate assembles the service: storage, migrations, the
// payment provider client, the domain services and the HTTP server.
package pressgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/pressgate/pressgate/internal/billing"
	"github.com/pressgate/pressgate/internal/config"
	"github.com/pressgate/pressgate/internal/lib/jwt"
	"github.com/pressgate/pressgate/internal/migrations"
	authservice "github.com/pressgate/pressgate/internal/services/auth"
	"github.com/pressgate/pressgate/internal/services/entitlement"
	postservice "github.com/pressgate/pressgate/internal/services/post"
	profileservice "github.com/pressgate/pressgate/internal/services/profile"
	"github.com/pressgate/pressgate/internal/services/reconciler"
	"github.com/pressgate/pressgate/internal/storage/repository"
)

// App is the running service.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New wires up the whole service from its configuration.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	billingClient := billing.NewClient(cfg.APIURL, cfg.APISecretKey)

	authService := authservice.New(db, db, jwtMaker)
	profileService := profileservice.New(db, logger)
	postService := postservice.New(db, logger)
	entitlementService := entitlement.New(db, logger)
	reconcilerService := reconciler.New(db, db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, routeServices{
		auth:         authService,
		profiles:     profileService,
		posts:        postService,
		entitlements: entitlementService,
		reconciler:   reconcilerService,
		billing:      billingClient,
		jwtMaker:     jwtMaker,
		db:           db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
