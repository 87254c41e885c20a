package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zahel-sys/sigc-auth/internal/adapter/cache"
	"github.com/zahel-sys/sigc-auth/internal/auth"
	"github.com/zahel-sys/sigc-auth/internal/bootstrap"
	"github.com/zahel-sys/sigc-auth/internal/config"
	httptransport "github.com/zahel-sys/sigc-auth/internal/http"
	"github.com/zahel-sys/sigc-auth/internal/http/handler"
	httpmiddleware "github.com/zahel-sys/sigc-auth/internal/http/middleware"
	"github.com/zahel-sys/sigc-auth/internal/jwt"
	apimiddleware "github.com/zahel-sys/sigc-auth/internal/middleware"
	"github.com/zahel-sys/sigc-auth/internal/password"
	"github.com/zahel-sys/sigc-auth/internal/repository"
	"github.com/zahel-sys/sigc-auth/internal/server"
	"github.com/zahel-sys/sigc-auth/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newUserRepository,
			newKeyRepository,
			newRedisClient,
			newAttemptStore,
			newPasswordHasher,
			newKeyManager,
			newTokenProvider,
			newAuthService,
			handler.NewAuthHandler,
			newAuthMiddleware,
			newRateLimiter,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureAdmin, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool, node *snowflake.Node) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool, node)
}

func newKeyRepository(pool *pgxpool.Pool, node *snowflake.Node) repository.KeyRepository {
	return repository.NewPostgresKeyRepo(pool, node)
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newAttemptStore(client redis.UniversalClient, cfg config.Config) repository.LoginAttemptStore {
	return cache.NewRedisAttemptStore(client, cfg.LockoutAttempts, cfg.LockoutWindow)
}

func newPasswordHasher() auth.PasswordHasher {
	return password.NewHasher()
}

func newKeyManager(repo repository.KeyRepository) *jwt.KeyManager {
	return jwt.NewKeyManager(repo)
}

func newTokenProvider(manager *jwt.KeyManager, cfg config.Config) auth.TokenProvider {
	return jwt.NewProvider(manager, cfg.TokenIssuer, cfg.AccessTokenTTL)
}

func newAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens auth.TokenProvider, cfg config.Config, logger *zap.Logger) *auth.Service {
	policy := auth.PasswordPolicy{MinLength: cfg.PasswordMinLength}
	return auth.NewService(users, hasher, tokens, policy, logger)
}

func newAuthMiddleware(tokens auth.TokenProvider) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Tokens: tokens}
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
