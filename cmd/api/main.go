package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"linetracker.onebusaway.org/internal/app"
	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/logging"
	"linetracker.onebusaway.org/internal/restapi"
	"linetracker.onebusaway.org/internal/tracking"
	"linetracker.onebusaway.org/internal/webui"
)

func main() {
	var cfg app.Config
	var apiKeysFlag string
	var stationsFile string
	var gtfsSource string
	var gtfsRoute string
	var dbPath string

	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&cfg.Env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key (negative disables limiting)")
	flag.StringVar(&stationsFile, "stations-file", "", "Path to a YAML station catalog")
	flag.StringVar(&gtfsSource, "gtfs-source", "", "URL or path of a static GTFS zip file to import stations from")
	flag.StringVar(&gtfsRoute, "gtfs-route", "", "Route ID to import from the GTFS feed")
	flag.StringVar(&dbPath, "db", "", "Path to a SQLite database for caching the station catalog")
	flag.Parse()

	if apiKeysFlag != "" {
		cfg.ApiKeys = strings.Split(apiKeysFlag, ",")
		for i := range cfg.ApiKeys {
			cfg.ApiKeys[i] = strings.TrimSpace(cfg.ApiKeys[i])
		}
	}

	logger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)

	cat, err := loadCatalog(logger, stationsFile, gtfsSource, gtfsRoute, dbPath)
	if err != nil {
		logger.Error("failed to load station catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("station catalog loaded", "stations", cat.Len())

	source := tracking.NewChannelSource()
	sink := tracking.AlertSinkFunc(func(alert tracking.Alert) {
		logger.Info("alert",
			"kind", alert.Kind,
			"station", alert.StationName,
			"stations_away", alert.StationsAway,
			"eta", alert.ETA)
	})

	service := tracking.NewService(logger, cat, source, sink)
	if err := service.Start(context.Background()); err != nil {
		logger.Error("failed to start tracking service", "error", err)
		os.Exit(1)
	}

	application := &app.Application{
		Config:  cfg,
		Logger:  logger,
		Catalog: cat,
		Service: service,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      buildHandler(application),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.Info("shutting down server", "signal", s.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	service.Stop()
	logger.Info("server stopped")
}

// buildHandler assembles the full handler chain: the REST API on its
// httprouter (with security headers), the debug pages on a ServeMux, and
// logging plus compression shared across both.
func buildHandler(application *app.Application) http.Handler {
	api := restapi.NewRestAPI(application)
	router := httprouter.New()
	api.SetRoutes(router)

	// The debug pages carry inline markup the API's Content-Security-Policy
	// would block, so the security headers wrap only the API router.
	mux := http.NewServeMux()
	webui.NewWebUI(application).SetWebUIRoutes(mux)
	mux.Handle("/", api.WithSecurityHeaders(router))

	var handler http.Handler = mux
	handler = restapi.CompressionMiddleware(handler)
	handler = restapi.NewRequestLoggingMiddleware(application.Logger)(handler)
	return handler
}

// loadCatalog resolves the station catalog from (in order of precedence)
// a YAML file, a GTFS feed, or a previously cached copy in SQLite. When a
// database path is given, a freshly imported catalog is saved back to it.
func loadCatalog(logger *slog.Logger, stationsFile, gtfsSource, gtfsRoute, dbPath string) (*catalog.Catalog, error) {
	var cat *catalog.Catalog
	var err error

	switch {
	case stationsFile != "":
		cat, err = catalog.LoadFile(stationsFile)
	case gtfsSource != "":
		cat, err = catalog.ImportGTFS(gtfsSource, gtfsRoute)
	}
	if err != nil {
		return nil, err
	}

	if dbPath == "" {
		if cat == nil {
			return nil, errors.New("no station source configured: set -stations-file, -gtfs-source or -db")
		}
		return cat, nil
	}

	store, err := catalog.OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(store, logger, "close catalog store")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cat != nil {
		if err := store.Save(ctx, cat); err != nil {
			return nil, err
		}
		return cat, nil
	}
	return store.Load(ctx)
}
