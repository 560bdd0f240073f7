// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file, environment variables, or both;
// reloadable settings are pushed into running components on change.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/metagate/metagate/adapters/clock"
	apihttp "github.com/metagate/metagate/adapters/http"
	"github.com/metagate/metagate/adapters/idgen"
	"github.com/metagate/metagate/adapters/metrics"
	"github.com/metagate/metagate/adapters/sfcli"
	"github.com/metagate/metagate/adapters/sqlite"
	"github.com/metagate/metagate/adapters/staging"
	"github.com/metagate/metagate/app"
	"github.com/metagate/metagate/config"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Service    *app.DeployService

	registry *prometheus.Registry
	runner   *sfcli.Runner
}

// Options configures application startup.
type Options struct {
	// ConfigPath points at the YAML config file. Empty means configuration
	// comes from environment variables only.
	ConfigPath string

	// WatchConfig enables hot reload on file change and SIGHUP. Ignored
	// when ConfigPath is empty.
	WatchConfig bool
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var holder *config.Holder
	var cfg *config.Config
	if opts.ConfigPath != "" {
		h, err := config.NewHolder(opts.ConfigPath, bootLogger)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		holder = h
		cfg = h.Get()
	} else {
		c, err := config.LoadFromEnv()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing metagate")

	a := &App{
		Logger: logger,
		Config: holder,
	}

	if err := a.initDatabase(cfg); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.Metrics = metrics.NewWithRegistry(a.registry)
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.initService(cfg)

	if err := a.initHTTPServer(cfg); err != nil {
		return nil, fmt.Errorf("init http server: %w", err)
	}

	if holder != nil && opts.WatchConfig {
		a.initHotReload(holder)
	}

	return a, nil
}

func (a *App) initDatabase(cfg *config.Config) error {
	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.DB = db
	a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("database initialized")
	return nil
}

func (a *App) initService(cfg *config.Config) {
	a.runner = sfcli.New(sfcli.Options{
		Bin:         cfg.Deploy.Bin,
		WaitMinutes: cfg.Deploy.WaitMinutes,
		Timeout:     cfg.Deploy.Timeout,
	}, a.Logger)

	deps := app.DeployDeps{
		Stager: staging.New(cfg.Staging.Root),
		Runner: a.runner,
		Store:  sqlite.NewDeploymentStore(a.DB),
		Clock:  clock.Real{},
		IDGen:  idgen.UUID{},
		Logger: a.Logger,
	}

	a.Service = app.NewDeployService(deps, app.DeployConfig{
		KeepStaged: cfg.Staging.Keep,
	})
}

func (a *App) initHTTPServer(cfg *config.Config) error {
	var deployHandler *apihttp.DeployHandler
	if a.Metrics != nil {
		deployHandler = apihttp.NewDeployHandlerWithMetrics(a.Service, a.Logger, a.Metrics)
	} else {
		deployHandler = apihttp.NewDeployHandler(a.Service, a.Logger)
	}
	healthHandler := apihttp.NewHealthHandler(a.DB)

	routerCfg := apihttp.RouterConfig{
		Metrics:       a.Metrics,
		MetricsPath:   cfg.Metrics.Path,
		EnableOpenAPI: cfg.OpenAPI.Enabled,
		StaticDir:     cfg.Server.StaticDir,
		CORSOrigins:   cfg.Server.CORSOrigins,
	}
	if a.registry != nil {
		routerCfg.MetricsHandler = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}
	if cfg.Deploy.Timeout > 0 {
		// Leave headroom over the tool backstop so deploy failures surface
		// as responses, not router timeouts.
		routerCfg.RequestTimeout = cfg.Deploy.Timeout + time.Minute
	}

	router := apihttp.NewRouterWithConfig(deployHandler, healthHandler, a.Logger, routerCfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
	return nil
}

func (a *App) initHotReload(holder *config.Holder) {
	holder.OnChange(a.applyConfig)
	holder.OnReloadError(func(err error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watching disabled")
	}
	holder.WatchSignals()
}

// applyConfig pushes reloadable settings into running components. Listen
// address, static dir, staging root, and database DSN still need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.Service.UpdateConfig(cfg.Staging.Keep)
	a.runner.UpdateConfig(sfcli.Options{
		Bin:         cfg.Deploy.Bin,
		WaitMinutes: cfg.Deploy.WaitMinutes,
		Timeout:     cfg.Deploy.Timeout,
	})

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
	}

	a.Logger.Info().Msg("runtime settings applied")
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application. In-flight deployments get the
// shutdown grace period, not their full wait budget.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
