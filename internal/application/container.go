// Package application provides application-level services and dependency
// injection.
package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eravn/syncdeck/internal/adapters/bridge"
	"github.com/eravn/syncdeck/internal/application/client"
	"github.com/eravn/syncdeck/internal/application/registry"
	"github.com/eravn/syncdeck/internal/infrastructure/config"
	"github.com/eravn/syncdeck/internal/infrastructure/logging"
	"github.com/eravn/syncdeck/internal/infrastructure/storage"
	"github.com/eravn/syncdeck/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	config  *config.Config
	verbose bool // Override log level to debug when true

	// Infrastructure
	logger *logging.Logger
	tracer *tracing.Tracer
	dbConn *storage.Connection

	// Local storage
	prefsRepo *storage.PrefsRepository

	// Bridge and application services
	bridge  bridge.Bridge
	store   *registry.Store
	service *client.Service
}

// NewContainer creates a new dependency injection container with all
// services initialized based on the provided configuration.
func NewContainer(ctx context.Context, cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	c.initLogging()

	if err := c.initTracing(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := c.initStorage(); err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := c.initBridge(); err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("failed to initialize bridge: %w", err)
	}

	c.initServices()

	return c, nil
}

// initLogging initializes the logger from configuration.
func (c *Container) initLogging() {
	logCfg := logging.DefaultConfig()
	if c.config.Logging.Level != "" {
		logCfg.Level = logging.Level(c.config.Logging.Level)
	}
	if c.config.Logging.Format != "" {
		logCfg.Format = logging.Format(c.config.Logging.Format)
	}
	if c.verbose {
		logCfg.Level = logging.LevelDebug
	}

	c.logger = logging.Init(logCfg)
}

// initTracing initializes the tracer from configuration.
func (c *Container) initTracing(ctx context.Context) error {
	traceCfg := tracing.Config{
		Enabled:      c.config.Tracing.Enabled,
		ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
		OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
		ServiceName:  c.config.Tracing.ServiceName,
		SampleRate:   c.config.Tracing.SampleRate,
	}
	if traceCfg.ServiceName == "" {
		traceCfg.ServiceName = "syncdeck"
	}

	tracer, err := tracing.Init(ctx, traceCfg)
	if err != nil {
		return err
	}
	c.tracer = tracer
	return nil
}

// initStorage opens the local preferences database. Preference storage is
// best-effort: a failure here disables prefs but not the client.
func (c *Container) initStorage() error {
	path, err := config.ExpandPath(c.config.Storage.Path)
	if err != nil {
		return err
	}

	conn, err := storage.NewConnection(path)
	if err != nil {
		return err
	}
	if err := conn.Open(); err != nil {
		c.logger.Warn("preferences storage unavailable", "error", err.Error())
		return nil
	}

	db, err := conn.DB()
	if err != nil {
		_ = conn.Close()
		return err
	}

	c.dbConn = conn
	c.prefsRepo = storage.NewPrefsRepository(db)
	return nil
}

// initBridge selects the bridge implementation from configuration.
func (c *Container) initBridge() error {
	switch c.config.Backend.Mode {
	case config.ModeRemote:
		httpClient := &http.Client{Timeout: c.config.Backend.Timeout}
		c.bridge = bridge.NewRemote(c.config.Backend.Endpoint,
			bridge.WithHTTPClient(httpClient),
			bridge.WithRemoteLogger(c.logger),
			bridge.WithRemoteTracer(c.tracer),
		)

	case config.ModeSimulator, "":
		opts := []bridge.SimulatorOption{
			bridge.WithDelayRange(c.config.Simulator.MinDelay, c.config.Simulator.MaxDelay),
			bridge.WithSimulatorLogger(c.logger),
			bridge.WithSimulatorTracer(c.tracer),
		}
		if c.config.Simulator.Seed != 0 {
			opts = append(opts, bridge.WithSeed(c.config.Simulator.Seed))
		}
		c.bridge = bridge.NewSimulator(opts...)

	default:
		return fmt.Errorf("unknown backend mode: %s", c.config.Backend.Mode)
	}

	return nil
}

// initServices wires the registry store and the client service.
func (c *Container) initServices() {
	c.store = registry.NewStore()
	c.service = client.NewService(c.bridge, c.store, client.WithLogger(c.logger))

	if c.prefsRepo != nil {
		if theme, err := c.prefsRepo.Get(context.Background(), storage.PrefTheme, string(registry.ThemeLight)); err == nil {
			c.store.SetTheme(registry.Theme(theme))
		}
	}
}

// Close shuts down all container-managed resources.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}

	if c.dbConn != nil {
		if err := c.dbConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close: %v", errs)
	}
	return nil
}

// Config returns the active configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the container's logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the container's tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}

// Bridge returns the active bridge implementation.
func (c *Container) Bridge() bridge.Bridge {
	return c.bridge
}

// Store returns the registry store.
func (c *Container) Store() *registry.Store {
	return c.store
}

// Service returns the client service.
func (c *Container) Service() *client.Service {
	return c.service
}

// Prefs returns the preferences repository, or nil when local storage is
// unavailable.
func (c *Container) Prefs() *storage.PrefsRepository {
	return c.prefsRepo
}
