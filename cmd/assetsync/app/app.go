// Package app provides the application context and dependency management for
// the assetsync CLI. It centralizes configuration, logging, and construction
// of the registry client so commands share one set of dependencies.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/northfleet/assetsync/internal/registry"
	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/errors"
)

// App holds the assetsync application dependencies.
type App struct {
	version string
	config  *Config
	logger  *zerolog.Logger

	mu       sync.Mutex
	registry *registry.Client
	schema   *assets.Schema
}

// New creates an App with configuration loaded from the environment, .env
// files and the optional config file.
func New(version string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}

	app := &App{
		version: version,
		config:  config,
	}

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the build version.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// ReloadLogger rebuilds the logger after flag parsing updated the config.
func (a *App) ReloadLogger() {
	logger := NewLogger(a.config)
	a.logger = &logger
}

// Schema returns the device-type attribute schema, loading it lazily from
// the configured override file or the embedded default.
func (a *App) Schema() (*assets.Schema, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.schema != nil {
		return a.schema, nil
	}
	schema, err := assets.LoadSchema(a.config.SchemaFile)
	if err != nil {
		return nil, err
	}
	a.schema = schema
	return schema, nil
}

// Registry returns the registry client, creating it lazily.
func (a *App) Registry() (*registry.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.registry != nil {
		return a.registry, nil
	}

	client, err := registry.New(registry.Config{
		BaseURL:     a.config.BaseURL,
		WorkspaceID: a.config.WorkspaceID,
		Username:    a.config.Username,
		APIToken:    a.config.APIToken,
		Logger:      a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.registry = client
	return client, nil
}

// ContextWithSignals creates a context cancelled on SIGINT or SIGTERM so
// batch runs can drain gracefully.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError prints an error to stderr and exits non-zero.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
