// Command server starts the storefront HTTP API.
//
// @title                       Storefront API
// @version                     1.0
// @description                 Authentication and account endpoints of the storefront backend.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/rs/zerolog"

	"github.com/shopcore/storefront-api/internal/api"
	"github.com/shopcore/storefront-api/internal/api/handler"
	"github.com/shopcore/storefront-api/internal/api/session"
	"github.com/shopcore/storefront-api/internal/core/ports"
	"github.com/shopcore/storefront-api/internal/core/service"
	"github.com/shopcore/storefront-api/internal/infrastructure/db/mongo"
	"github.com/shopcore/storefront-api/internal/infrastructure/db/postgres"
	"github.com/shopcore/storefront-api/internal/infrastructure/db/redis"
	"github.com/shopcore/storefront-api/internal/pkg/config"
	"github.com/shopcore/storefront-api/internal/pkg/password"
	"github.com/shopcore/storefront-api/pkg/logger"
)

const (
	serviceName     = "storefront-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.OptionsFor(serviceName, cfg.Env, cfg.LogLevel))

	users, checks, closeStore, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var revoker ports.TokenRevoker
	if cfg.RedisEnabled() {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		checks["redis"] = redis.Ping(rdb)
		if cfg.JWT.RevokeRefreshTokens {
			revoker = redis.NewRevocationStore(rdb)
			log.Info().Msg("refresh token revocation enabled")
		}
	}

	hasher, err := password.NewArgon2(password.Config{
		MemoryKB:    cfg.Argon2.MemoryKB,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		return err
	}

	tokens, err := service.NewTokenIssuer(service.TokenConfig{
		Secret:            cfg.JWT.Secret,
		AccessExpiration:  cfg.JWT.Expiration,
		RefreshExpiration: cfg.JWT.RefreshExpiration,
	})
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		AuthService:  service.NewAuthService(users, hasher, tokens, revoker, log),
		UserService:  service.NewUserService(users, log),
		Tokens:       tokens,
		Cookies:      session.NewCookieManager(cfg.JWT.RefreshCookieName, cfg.Env, cfg.Domain),
		HealthChecks: checks,
		Logger:       log,
		CORSOrigins:  cfg.CORSOrigin,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}

// openUserStore connects the configured user store and returns it together
// with its readiness check and a close function.
func openUserStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, map[string]handler.HealthCheck, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}

		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}

		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return repo, map[string]handler.HealthCheck{"mongodb": mongo.Ping(client)}, closeFn, nil

	default:
		if err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			return nil, nil, nil, err
		}

		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.URL})
		if err != nil {
			return nil, nil, nil, err
		}

		repo := postgres.NewUserRepository(pool)
		log.Info().Msg("connected to postgres")
		return repo, map[string]handler.HealthCheck{"postgres": repo.Ping}, pool.Close, nil
	}
}
