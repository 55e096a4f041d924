package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/recommender/internal/api"
	"example.com/recommender/internal/app"
	"example.com/recommender/internal/auth"
	"example.com/recommender/internal/config"
	"example.com/recommender/internal/logging"
	httptransport "example.com/recommender/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(app.LoggingConfig(cfg.Logging))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load artifacts")
	}

	publisher := app.BuildPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("publisher close failed")
		}
	}()

	routerCfg := api.RouterConfig{
		CORSOrigins: cfg.Security.CORSOrigins,
		Metrics:     promhttp.Handler(),
	}
	if cfg.Security.RateLimitEnabled {
		routerCfg.RateLimitRequests = cfg.Security.RateLimitRequests
		routerCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	}
	if cfg.Security.AuthEnabled {
		mw := auth.NewMiddleware(auth.Config{Secret: cfg.Security.JWTSecret, Issuer: cfg.Security.JWTIssuer})
		routerCfg.Auth = &mw
		logging.Info().Str("issuer", cfg.Security.JWTIssuer).Msg("bearer authentication enabled")
	}

	handler := api.NewHandler(service, publisher)
	// drain in-flight event publishes before the publisher closes
	defer handler.Wait()

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, api.NewRouter(handler, routerCfg))

	if err := httptransport.Serve(ctx, server, cfg.Server.ShutdownTimeout); err != nil {
		logging.Error().Err(err).Msg("server error")
		return
	}
	logging.Info().Msg("recommendation service stopped")
}
