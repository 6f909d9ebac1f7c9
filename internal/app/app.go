// Package app wires the database, services, and HTTP surface into a running
// process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/checkout"
	"github.com/blikpay/checkout/internal/config"
	"github.com/blikpay/checkout/internal/db"
	adminapi "github.com/blikpay/checkout/internal/http/api/admin"
	"github.com/blikpay/checkout/internal/http/api/front"
	"github.com/blikpay/checkout/internal/settings"
	"github.com/blikpay/checkout/internal/stripeapi"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations without serving.
func Migrate(ctx context.Context, cfg *config.Config) error {
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the checkout backend and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg *config.Config) error {
	configureLogging(cfg.Log)

	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	recorder := audit.NewRecorder(conn)
	store := settings.NewStore(conn, recorder)

	if errBootstrap := bootstrap(ctx, conn, cfg.Bootstrap, store, recorder); errBootstrap != nil {
		return errBootstrap
	}

	checkout.NewRetentionCleaner(conn, store).Start(ctx)

	engine := buildEngine(conn, cfg, store, recorder)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("app: http server listening")
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case errServe := <-errCh:
		return fmt.Errorf("app: serve: %w", errServe)
	case <-ctx.Done():
	}

	log.Info("app: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("app: shutdown: %w", errShutdown)
	}
	return nil
}

// buildEngine assembles the gin engine with all routes registered.
func buildEngine(conn *gorm.DB, cfg *config.Config, store *settings.Store, recorder *audit.Recorder) *gin.Engine {
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	stripeClient := stripeapi.NewClient(cfg.Stripe.BaseURL)
	service := checkout.NewService(conn, store, stripeClient, recorder, cfg.Server.BaseURL)
	reconciler := checkout.NewReconciler(conn, recorder)

	front.RegisterFrontRoutes(engine, service, reconciler, store)
	adminapi.RegisterAdminRoutes(engine, conn, cfg.JWT, store, recorder)
	return engine
}
