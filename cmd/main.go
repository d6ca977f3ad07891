package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpctx "github.com/skycast/skycast-server/internal/api/http/context"
	"github.com/skycast/skycast-server/internal/api/http/router"
	"github.com/skycast/skycast-server/internal/config"
	"github.com/skycast/skycast-server/internal/hash"
	"github.com/skycast/skycast-server/internal/logger"
	"github.com/skycast/skycast-server/internal/model"
	"github.com/skycast/skycast-server/internal/repository/memory"
	"github.com/skycast/skycast-server/internal/repository/postgres"
	"github.com/skycast/skycast-server/internal/service"
	"github.com/skycast/skycast-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	logger.Info("starting skycast server",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)

	var (
		userStore  model.UserStore
		tokenStore model.RefreshTokenStore
	)
	switch cfg.Database.Driver {
	case "memory":
		userStore = memory.NewUserRepository()
		tokenStore = memory.NewRefreshTokenRepository()
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		defer db.Close()

		userStore = postgres.NewUserRepository(db)
		tokenStore = postgres.NewRefreshTokenRepository(db)
	}

	issuer, err := token.NewJWT(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTokenTTL(),
		cfg.JWT.RefreshTokenTTL(),
	)
	if err != nil {
		logger.Fatal("failed to configure token issuer", "error", err)
	}

	hasher := hash.NewBcrypt(0)
	authService := service.NewAuth(userStore, tokenStore, hasher, issuer, logger)
	weatherService := service.NewWeather(cfg.Weather.CacheTTL, logger)
	ctxMgr := httpctx.NewManager()

	engine := router.New(authService, weatherService, issuer, ctxMgr, logger).Register()

	server := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.HTTP.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
