package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/auth"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/config"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/ledger"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/outbox"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/remote"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/report"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/server"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/service"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage/postgres"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage/redisstore"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage/sqlite"
	"github.com/msmolicek/App-UZama-Grill-Secured/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Env)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.StoreDriver)

	opts := []ledger.Option{
		ledger.WithSideItem(cfg.SideItemID),
		ledger.WithOverdueAfter(cfg.DispatchOverdueAfter),
	}
	if cfg.RequireInitialStock {
		opts = append(opts, ledger.WithStockGate())
	}
	l, err := ledger.Open(ctx, store, opts...)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	var (
		syncer service.Syncer
		menu   service.MenuSource
	)
	if cfg.BackendURL != "" {
		client, err := remote.New(cfg.BackendURL, cfg.SyncTimeout)
		if err != nil {
			return err
		}
		menu = client

		if cfg.MenuFetchOnStart {
			refreshMenu(ctx, l, client)
		}

		worker := outbox.New(l, client,
			outbox.WithInterval(cfg.SyncInterval),
			outbox.WithSendTimeout(cfg.SyncTimeout),
			outbox.WithProber(client),
		)
		l.SetNotifier(worker)
		syncer = worker
		go worker.Run(ctx)
		slog.Info("Sync worker started", "interval", cfg.SyncInterval)
	} else {
		slog.Warn("BACKEND_URL not set, events stay queued")
	}

	if cfg.AdminPINHash == "" {
		slog.Warn("ADMIN_PIN_HASH not set, admin login disabled")
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	router := server.NewRouter(server.Services{
		Health:  server.HealthHandler{Store: store, Sync: l},
		Ledger:  service.NewLedgerService(l, syncer),
		Admin:   service.NewAdminService(l, menu),
		Auth:    service.NewAuthService(auth.NewPINAuthenticator(cfg.AdminPINHash), jwtManager),
		Reports: report.Handler{Ledger: l},
		JWT:     jwtManager,
	})

	return server.Start(ctx, cfg, router)
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL, cfg.StateKey)
	case config.DriverRedis:
		return redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.StateKey,
		})
	default:
		return sqlite.New(cfg.DBPath, cfg.StateKey)
	}
}

// refreshMenu replaces the catalog with the backend's; on failure the stored
// menu stays.
func refreshMenu(ctx context.Context, l *ledger.Ledger, client *remote.Client) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	items, err := client.FetchMenu(fetchCtx)
	if err != nil {
		slog.Warn("Menu fetch failed, using stored menu", "error", err)
		return
	}
	if err := l.ReplaceMenu(ctx, items); err != nil {
		slog.Warn("Fetched menu rejected", "error", err)
		return
	}
	slog.Info("Menu loaded from backend", "items", len(items))
}
