// Command lexauthd runs the credential-exchange server: Postgres-backed
// accounts and sessions behind the Fiber HTTP adapter, with an optional
// Redis session cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/legalaipro/lexauth"
	fiberadapter "github.com/legalaipro/lexauth/adapters/fiber"
	pgxadapter "github.com/legalaipro/lexauth/adapters/pgx"
	redisadapter "github.com/legalaipro/lexauth/adapters/redis"
	"github.com/legalaipro/lexauth/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("lexauthd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	var cache lexauth.Cache
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := goredis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		cache = redisadapter.New(client, redisadapter.Config{TTL: cfg.CacheTTLDuration()})
		slog.Info("session cache backed by redis")
	}

	app := fiber.New(fiber.Config{AppName: "lexauthd"})
	app.Use(requestid.New())
	app.Use(logger.New())

	adapter := fiberadapter.New(app)
	adapter.CookieSecure = cfg.CookieSecure

	auth, err := lexauth.New(lexauth.Config{
		Database:      pgxadapter.New(pool),
		HTTP:          adapter,
		CacheAdapter:  cache,
		SessionConfig: &lexauth.SessionConfig{MaxAge: cfg.SessionMaxAgeDuration()},
	})
	if err != nil {
		return fmt.Errorf("assemble auth: %w", err)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("listening", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})

	group.Go(func() error {
		return runSessionJanitor(ctx, auth.Sessions, cfg.PurgeIntervalDuration())
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

// runSessionJanitor sweeps expired session rows until ctx is cancelled.
func runSessionJanitor(ctx context.Context, sessions *lexauth.SessionManager, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			purged, err := sessions.PurgeExpired()
			if err != nil {
				slog.Warn("session purge failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("purged expired sessions", "count", purged)
			}
		}
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
