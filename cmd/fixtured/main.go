package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"traceguard/internal/fixture"
	"traceguard/internal/platform/config"
	"traceguard/internal/platform/httpserver"
	"traceguard/internal/platform/logger"
	"traceguard/internal/platform/redis"
)

// main wires the fixture backend: store selection by configuration, one
// seeded operator account, and a small HTTP lifecycle. Trust policy and
// endpoint semantics live in internal/fixture.
func main() {
	cfg := config.FixtureFromEnv()
	log := logger.New()
	ctx := context.Background()

	devices, cleanup, err := buildDeviceStore(ctx, cfg)
	if err != nil {
		log.Error("device store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	tokens, tokenCleanup, err := buildTokenStore(cfg)
	if err != nil {
		log.Error("token store init failed", "error", err)
		os.Exit(1)
	}
	defer tokenCleanup()

	srv := fixture.NewServer(log, fixture.NewMemoryAdminStore(), devices, tokens,
		fixture.NewTokenIssuer(cfg.JWTSigningKey))

	if err := srv.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("seed admin failed", "error", err)
		os.Exit(1)
	}

	if cfg.SeedDevices {
		if writer, ok := devices.(fixture.DeviceWriter); ok {
			if err := fixture.SeedDevices(ctx, writer); err != nil {
				log.Error("seed devices failed", "error", err)
				os.Exit(1)
			}
		}
	}

	httpSrv := httpserver.New(cfg.Addr, srv.Router())
	log.Info("fixture server starting", "addr", cfg.Addr, "admin", cfg.AdminEmail)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func buildDeviceStore(ctx context.Context, cfg config.Fixture) (fixture.DeviceStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return fixture.NewMemoryDeviceStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := fixture.NewPostgresDeviceStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func buildTokenStore(cfg config.Fixture) (fixture.TokenStore, func(), error) {
	client, err := redis.New(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return fixture.NewMemoryTokenStore(), func() {}, nil
	}
	return fixture.NewRedisTokenStore(client.Client), func() { _ = client.Close() }, nil
}
