package app

import (
	"log/slog"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/tracking"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware: the server configuration, the logger, the station
// catalog for the tracked line, and the tracking service that owns all
// journey state.
type Application struct {
	Config  Config
	Logger  *slog.Logger
	Catalog *catalog.Catalog
	Service *tracking.Service
}

// Config holds all the configuration settings for our Application. These are
// read from command-line flags when the Application starts.
type Config struct {
	Port    int
	Env     string
	ApiKeys []string
	// RateLimit is the number of requests allowed per second per API key.
	// Zero disables all requests; negative disables limiting.
	RateLimit int
}
