package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"retaildesk/backend/internal/config"
	"retaildesk/backend/internal/httpapi"
	"retaildesk/backend/internal/logger"
	"retaildesk/backend/internal/seed"
	"retaildesk/backend/internal/service"
	"retaildesk/backend/internal/store"
	"retaildesk/backend/internal/store/memory"
	pgstore "retaildesk/backend/internal/store/postgres"
	redisstore "retaildesk/backend/internal/store/redis"
	sqlitestore "retaildesk/backend/internal/store/sqlite"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(logger.ConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogEncoding))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if err := validateSecurityConfig(cfg); err != nil {
		return fmt.Errorf("invalid security configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid storage configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, closers, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn("close error", zap.Error(err))
			}
		}
	}()

	svc := service.New(backend, log)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := bootstrap(ctx, svc, cfg, log); err != nil {
		return err
	}

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, svc)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, log)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("retail backend listening", zap.String("addr", cfg.Address()), zap.String("storage", cfg.StorageBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}

// openBackend connects the configured storage backend. The returned closers
// run in order on shutdown.
func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Backend, []func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("redis unavailable: %w", err)
		}
		log.Info("storage: redis", zap.String("addr", cfg.RedisAddr))
		return rs, []func() error{rs.Close}, nil
	case config.BackendPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres unavailable: %w", err)
		}
		log.Info("storage: postgres")
		return pg, []func() error{pg.Close}, nil
	case config.BackendSQLite:
		sq, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite unavailable: %w", err)
		}
		log.Info("storage: sqlite", zap.String("path", cfg.SQLitePath))
		return sq, []func() error{sq.Close}, nil
	default:
		log.Info("storage: in-memory")
		if cfg.SeedFile != "" {
			return memory.New(), nil, nil
		}
		return memory.NewSeeded(), nil, nil
	}
}

// bootstrap imports the seed file into an empty catalog and creates the first
// admin account.
func bootstrap(ctx context.Context, svc *service.Service, cfg config.Config, log *zap.Logger) error {
	if cfg.SeedFile != "" {
		if len(svc.ListProducts(ctx)) > 0 {
			log.Info("seed skipped, catalog already populated", zap.String("file", cfg.SeedFile))
		} else {
			fixture, err := seed.LoadFromFile(cfg.SeedFile)
			if err != nil {
				return err
			}
			res, err := seed.Apply(ctx, svc, fixture)
			if err != nil {
				return err
			}
			log.Info("seed applied", zap.String("file", cfg.SeedFile), zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
		}
	}

	created, err := svc.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.SeedAdminEmail))
	}
	return nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if (cfg.SeedAdminEmail == "") != (cfg.SeedAdminPassword == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}
