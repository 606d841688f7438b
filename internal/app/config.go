package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"proxysmith/internal/paths"
	pkgerrors "proxysmith/pkg/errors"
)

// Config represents application configuration
type Config struct {
	Probe        ProbeConfig    `yaml:"probe"`
	Validate     ValidateConfig `yaml:"validate"`
	Catalog      CatalogConfig  `yaml:"catalog"`
	Domains      []string       `yaml:"domains" validate:"dive,hostname_rfc1123"`
	PathTemplate string         `yaml:"path_template" validate:"required,startswith=/"`
	Listen       string         `yaml:"listen" validate:"required,hostname_port"`
	Log          LogConfig      `yaml:"log"`
}

// ProbeConfig configures the batch liveness scheduler.
type ProbeConfig struct {
	Checker   string        `yaml:"checker" validate:"oneof=http tcp"`
	CheckURL  string        `yaml:"check_url" validate:"omitempty,url"`
	Slots     int64         `yaml:"slots" validate:"min=1,max=64"`
	BatchSize int           `yaml:"batch_size" validate:"min=1,max=100"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	Interval  time.Duration `yaml:"interval" validate:"gt=0"`
}

// ValidateConfig configures bulk validation.
type ValidateConfig struct {
	Attempts    int           `yaml:"attempts" validate:"min=1,max=5"`
	Backoff     time.Duration `yaml:"backoff" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Concurrency int           `yaml:"concurrency" validate:"min=1,max=64"`
}

type CatalogConfig struct {
	URL      string `yaml:"url" validate:"omitempty,url"`
	PageSize int    `yaml:"page_size" validate:"min=1,max=200"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Probe: ProbeConfig{
			Checker:   "http",
			Slots:     5,
			BatchSize: 10,
			Timeout:   10 * time.Second,
			Interval:  5 * time.Minute,
		},
		Validate: ValidateConfig{
			Attempts:    2,
			Backoff:     500 * time.Millisecond,
			Timeout:     4 * time.Second,
			Concurrency: 5,
		},
		Catalog:      CatalogConfig{PageSize: 20},
		PathTemplate: "/{ip}-{port}",
		Listen:       "127.0.0.1:8080",
		Log:          LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig reads the YAML file at path (the default location when empty),
// loads .env, applies PROXYSMITH_* overrides and validates the result. A
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = paths.ConfigFile(); err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(cfg, os.LookupEnv)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, pkgerrors.FromValidator(err)
	}
	return cfg, nil
}

// applyEnv overlays PROXYSMITH_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("PROXYSMITH_CHECK_URL"); ok {
		cfg.Probe.CheckURL = v
	}
	if v, ok := lookup("PROXYSMITH_CATALOG_URL"); ok {
		cfg.Catalog.URL = v
	}
	if v, ok := lookup("PROXYSMITH_DOMAINS"); ok {
		cfg.Domains = nil
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.Domains = append(cfg.Domains, d)
			}
		}
	}
	if v, ok := lookup("PROXYSMITH_LISTEN"); ok {
		cfg.Listen = v
	}
	if v, ok := lookup("PROXYSMITH_LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
}

// Marshal renders cfg as YAML, used by "config init".
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Domain returns the first configured domain, or "".
func (c *Config) Domain() string {
	if len(c.Domains) == 0 {
		return ""
	}
	return c.Domains[0]
}
