package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/danish-weather/internal/api/http"
	"github.com/i474232898/danish-weather/internal/config"
	"github.com/i474232898/danish-weather/internal/fetch"
	"github.com/i474232898/danish-weather/internal/location"
	"github.com/i474232898/danish-weather/internal/scheduler"
	"github.com/i474232898/danish-weather/internal/store"
	"github.com/i474232898/danish-weather/internal/telemetry"
	"github.com/i474232898/danish-weather/internal/upstream"
	"github.com/i474232898/danish-weather/internal/weather"
	"github.com/i474232898/danish-weather/internal/weather/providers"
)

type ServeCmd struct {
	NoRefresh bool `help:"Disable the periodic refresh (server only)."`
}

func (s *ServeCmd) Run(cfg *config.AppConfig) error {
	shutdownTracing, err := telemetry.Setup(serviceName, cfg.ZipkinURL)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	// Outbound calls to MET Norway and Open-Meteo.
	upstreamClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	proxy := upstream.NewProxy(
		upstream.NewMetNorway(upstreamClient, cfg.MetNorwayURL, cfg.UserAgent),
		upstream.NewOpenMeteo(upstreamClient, cfg.OpenMeteoURL),
		cfg.UpstreamTimeout,
	)

	aggregator := newAggregator(cfg, cfg.ProxyBaseURL)
	memStore := store.NewMemoryStore(cfg.SnapshotMaxAge)

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Compare waits for the adapters' full retry budget.
		WriteTimeout: time.Minute,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(httpapi.Tracing())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Proxy:      proxy,
		Aggregator: aggregator,
		Latest:     memStore,
		Default:    cfg.Coordinate(),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("listening")

	// The first cycle starts right away; the fetch client's retries cover the
	// listener coming up.
	if !s.NoRefresh {
		sched := scheduler.New(cfg.Coordinate(), cfg.RefreshInterval, cfg.RefreshTimeout, aggregator, memStore)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		log.Info().Msg("periodic refresh disabled")
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	return nil
}

// newAggregator wires both adapters to the proxy at proxyBaseURL through one
// shared retrying client.
func newAggregator(cfg *config.AppConfig, proxyBaseURL string) *weather.Aggregator {
	client := fetch.New(&http.Client{},
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxRetries(cfg.FetchMaxRetries),
		fetch.WithBackoffStep(cfg.FetchBackoffStep),
		fetch.WithUserAgent(cfg.UserAgent),
	)

	opts := providers.Options{
		ProxyBaseURL: proxyBaseURL,
		LocationName: cfg.LocationName,
		Names:        location.NewResolver(cfg.GeocoderAPIKey, cfg.LocationName),
	}
	return weather.NewAggregator(providers.NewYR(client, opts), providers.NewDMI(client, opts))
}
