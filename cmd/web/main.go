// Command web serves the catalog as a JSON API. Spotify credentials and the
// remaining settings come from environment variables (optionally via a .env
// file). The server listens on ADDR, which defaults to :4000, and exposes
// Prometheus metrics on /metrics.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"Spotify-Wrapper-Go/pkg/config"
	"Spotify-Wrapper-Go/pkg/db"
	"Spotify-Wrapper-Go/pkg/handlers"
	"Spotify-Wrapper-Go/pkg/logging"
	"Spotify-Wrapper-Go/pkg/metrics"
	"Spotify-Wrapper-Go/pkg/spotify"
)

// main configures application dependencies and starts the HTTP server.
func main() {
	cfg := config.Load()

	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("logger init")
	}
	defer closer.Close()

	// Without credentials the catalog cannot authenticate so we exit early.
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	aliases, err := cfg.Aliases()
	if err != nil {
		log.WithError(err).Fatal("load aliases")
	}

	// A dedicated registry keeps /metrics limited to what we register here.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := spotify.NewWrapper(ctx, cfg.ClientID, cfg.ClientSecret,
		spotify.WithAliases(aliases),
		spotify.WithLogger(log),
		spotify.WithMetrics(m),
	)
	if err != nil {
		log.WithError(err).Fatal("spotify client init")
	}

	// DATABASE_PATH selects the SQLite file that stores snapshots.
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("db init")
	}
	defer database.Close()

	app := &handlers.Application{Catalog: catalog, DB: database, Log: log}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(app, reg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("http server error")
	}
}

// newHandler registers the API routes and /metrics and wraps them with the
// shared middleware.
func newHandler(app *handlers.Application, gatherer prometheus.Gatherer, log logrus.FieldLogger) http.Handler {
	mux := app.Routes()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return handlers.RequestLogger(log, handlers.SecurityHeaders(mux))
}
