package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"proxysmith/internal/catalog"
	"proxysmith/internal/codec"
	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

// App represents the application context
type App struct {
	Config  *Config
	Logger  *zap.Logger
	Codecs  *codec.Registry
	Fetcher *catalog.Fetcher
}

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// New creates a new application instance
func New(opts Options) (*App, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger), nil
}

// NewWithConfig wires an App around an existing config and logger.
func NewWithConfig(cfg *Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newApp(cfg, logger)
}

func newApp(cfg *Config, logger *zap.Logger) *App {
	fetchCfg := catalog.DefaultFetcherConfig()
	fetchCfg.Logger = logger.Named("catalog")

	return &App{
		Config:  cfg,
		Logger:  logger,
		Codecs:  codec.NewRegistry(),
		Fetcher: catalog.NewFetcher(fetchCfg),
	}
}

// Close closes the application and releases resources
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return nil
}

// Checker builds the configured liveness checker.
func (a *App) Checker() (liveness.Checker, error) {
	return liveness.NewChecker(a.Config.Probe.Checker, a.Config.Probe.CheckURL)
}

// NewScheduler builds a batch scheduler from the probe config.
func (a *App) NewScheduler(onUpdate func(liveness.Update)) (*liveness.Scheduler, error) {
	checker, err := a.Checker()
	if err != nil {
		return nil, err
	}
	return liveness.NewScheduler(checker, liveness.SchedulerConfig{
		Slots:     a.Config.Probe.Slots,
		BatchSize: a.Config.Probe.BatchSize,
		Timeout:   a.Config.Probe.Timeout,
		Logger:    a.Logger.Named("probe"),
		OnUpdate:  onUpdate,
	}), nil
}

// NewValidator builds a bulk validator from the validate config.
func (a *App) NewValidator() (*liveness.Validator, error) {
	checker, err := a.Checker()
	if err != nil {
		return nil, err
	}
	return liveness.NewValidator(checker, liveness.ValidatorConfig{
		Attempts:    a.Config.Validate.Attempts,
		Backoff:     a.Config.Validate.Backoff,
		Timeout:     a.Config.Validate.Timeout,
		Concurrency: a.Config.Validate.Concurrency,
		Logger:      a.Logger.Named("validate"),
	}), nil
}

// LoadCatalog reads endpoints from an http(s) URL or a local file. An empty
// source falls back to catalog.url.
func (a *App) LoadCatalog(ctx context.Context, source string) ([]proxy.Endpoint, error) {
	if source == "" {
		source = a.Config.Catalog.URL
	}
	if source == "" {
		return nil, fmt.Errorf("no catalog source: pass --catalog or set catalog.url")
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return a.Fetcher.Load(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	eps, err := catalog.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", source, err)
	}
	a.Logger.Debug("catalog loaded", zap.String("source", source), zap.Int("endpoints", len(eps)))
	return eps, nil
}
