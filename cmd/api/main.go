// @title        Shop API
// @version      1.0
// @description  Customer accounts, authentication and profile management.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront/shop-api/internal/api"
	"github.com/storefront/shop-api/internal/core/service"
	"github.com/storefront/shop-api/internal/infrastructure/config"
	mongodb "github.com/storefront/shop-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/shop-api/internal/infrastructure/db/redis"
	"github.com/storefront/shop-api/internal/infrastructure/http/handlers"
	"github.com/storefront/shop-api/internal/infrastructure/queue"
	"github.com/storefront/shop-api/internal/infrastructure/security"
	"github.com/storefront/shop-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Fallback(nil)
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "shop-api",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting")

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "shop-api",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure mongodb indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}

	// --- Core wiring ---
	users := mongodb.NewUserRepository(db)
	auditSvc := service.NewAuditService(mongodb.NewAuditRepository(db), logger.Component("audit"))

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditSvc, logger.Component("audit"))
	dispatcher.Start(workerCtx)

	authSvc := service.NewAuthService(
		users,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		cfg.Auth.JWTTTL,
		logger.Component("auth"),
		service.WithDenylist(redisdb.NewTokenDenylist(rdb)),
		service.WithLoginLimiter(redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)),
		service.WithAuditRecorder(dispatcher),
	)
	userSvc := service.NewUserService(users, logger.Component("users"))

	e := api.NewRouter(api.RouterConfig{
		AuthService: authSvc,
		UserService: userSvc,
		Readiness: handlers.NewHealthDependenciesHandler(map[string]handlers.Pinger{
			"mongodb": handlers.MongoPinger(db),
			"redis":   handlers.RedisPinger(rdb),
		}),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()
	log.Info().Str("addr", ":"+cfg.Port).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Stop accepting audit events only after in-flight requests finished.
	cancelWorkers()
	dispatcher.Wait()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("close redis")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("disconnect mongodb")
	}
	log.Info().Msg("bye")
}
