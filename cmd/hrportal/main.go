// HR Portal — employee services backend
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	hrportalapi "github.com/d9705996/hrportal/internal/api"
	"github.com/d9705996/hrportal/internal/api/handler"
	"github.com/d9705996/hrportal/internal/api/middleware"
	"github.com/d9705996/hrportal/internal/config"
	"github.com/d9705996/hrportal/internal/db"
	"github.com/d9705996/hrportal/internal/health"
	"github.com/d9705996/hrportal/internal/observability"
	"github.com/d9705996/hrportal/internal/seed"
	"github.com/d9705996/hrportal/internal/sla"
	"github.com/d9705996/hrportal/internal/storage"
	"github.com/d9705996/hrportal/internal/version"
	"github.com/d9705996/hrportal/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	environment := "production"
	if cfg.Seed.Demo {
		environment = "development"
	}

	// --- Observability -------------------------------------------------------
	obs, log, err := observability.New(ctx, &observability.Config{
		ServiceName:    "hrportal",
		ServiceVersion: version.Version,
		Environment:    environment,
		LogLevel:       cfg.Log.Level,
		LogFormat:      cfg.Log.Format,
		OTLPEndpoint:   cfg.OTel.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer obs.Shutdown(context.Background())
	slog.SetDefault(log)
	log.Info("starting hrportal", "version", version.Version, "commit", version.Commit, "db_driver", cfg.DB.Driver)

	// --- Database ------------------------------------------------------------
	// db.New opens the connection, runs migrations (AutoMigrate for SQLite,
	// golang-migrate for Postgres), and returns the GORM handle plus an
	// optional pgxpool (non-nil only for postgres, used by River).
	gormDB, pool, err := db.New(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}
	log.Info("database ready", "driver", cfg.DB.Driver)

	// --- Seed ----------------------------------------------------------------
	if err := seed.EnsureAdmin(ctx, gormDB, seed.AdminOptions{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if cfg.Seed.Demo {
		if err := seed.EnsureDemoData(ctx, gormDB, log); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	// --- File storage --------------------------------------------------------
	store, err := storage.New(cfg.Upload.Dir, cfg.Upload.MaxSizeBytes)
	if err != nil {
		return fmt.Errorf("init file storage: %w", err)
	}

	// --- Worker queue --------------------------------------------------------
	// The same sweeper runs hourly via the queue and on demand via the admin
	// endpoint; there is no package-level singleton.
	sweeper := sla.NewSweeper(gormDB, cfg.SLA)

	if pool != nil {
		if err := worker.MigrateRiver(ctx, pool); err != nil {
			return fmt.Errorf("river migrations: %w", err)
		}
		log.Info("river migrations applied")
	}

	wq, err := worker.New(pool, cfg.DB.Driver, cfg.Worker.Concurrency, cfg.SLA.SweepInterval, sweeper, log)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	if err := wq.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := wq.Stop(stopCtx); err != nil {
			log.Error("worker stop error", "err", err)
		}
	}()

	// --- HTTP routes ---------------------------------------------------------
	handlers := hrportalapi.Handlers{
		Health:        health.New(db.NewPinger(gormDB), environment),
		Auth:          handler.NewAuthHandler(gormDB, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		Users:         handler.NewUserHandler(gormDB),
		Admin:         handler.NewAdminHandler(gormDB, sweeper, cfg.SLA),
		Feedback:      handler.NewFeedbackHandler(gormDB, cfg.SLA),
		Channels:      handler.NewChannelHandler(gormDB),
		Memberships:   handler.NewMembershipHandler(gormDB),
		Announcements: handler.NewAnnouncementHandler(gormDB),
		Notifications: handler.NewNotificationHandler(gormDB),
		Conversations: handler.NewConversationHandler(gormDB),
		Birthday:      handler.NewBirthdayHandler(gormDB),
		Files:         handler.NewFileHandler(gormDB, store),
		Vendor:        handler.NewVendorHandler(gormDB),
	}

	mux := http.NewServeMux()
	hrportalapi.RegisterRoutes(mux, handlers, cfg.JWT.Secret)
	// Prometheus metrics endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	// SPA: serve embedded frontend from ui/dist
	registerSPA(mux, log)

	// CORS wraps everything so error responses carry the headers too.
	root := middleware.CORS(cfg.CORS)(middleware.Logging(log)(mux))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Start server --------------------------------------------------------
	log.Info("http server listening", "addr", srv.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped cleanly")
	return nil
}
