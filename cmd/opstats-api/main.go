// @title         Opstats API
// @version       0.1.0
// @description   Operational statistics aggregation for retail units

package main

import (
	"context"
	"os/signal"
	"syscall"

	"opstats/internal/platform/cache"
	"opstats/internal/platform/config"
	"opstats/internal/platform/logger"

	phttp "opstats/internal/platform/net/http"

	"opstats/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (OPSTATS_API_*)
	root := config.New()
	apiCfg := root.Prefix("OPSTATS_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the cache store is shared by every concurrent batch
	store, err := cache.NewRedis(ctx, root.Prefix("OPSTATS_"))
	if err != nil {
		l.Panic().Err(err).Msg("cache.NewRedis failed")
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close cache")
		}
	}()

	// http server (reads OPSTATS_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:        apiCfg,
			Store:         store,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	go func() {
		<-ctx.Done()
		l.Info().Msg("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			l.Error().Err(err).Msg("shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
