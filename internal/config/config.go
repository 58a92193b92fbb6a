// Package config loads runtime settings for the formbuilder binaries.
//
// Precedence, lowest first: built-in defaults, the YAML file, FORMBUILDER_*
// environment variables. Command line flags are applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// VisibilityAlways shows every section and field.
	VisibilityAlways = "always"
	// VisibilityExpr evaluates conditions with the expression evaluator.
	VisibilityExpr = "expr"

	envPrefix = "FORMBUILDER_"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of the YAML document.
type Config struct {
	Title      string          `yaml:"title"`
	Log        Log             `yaml:"log"`
	IDs        string          `yaml:"ids"`
	Visibility string          `yaml:"visibility"`
	Server     Server          `yaml:"server"`
	Countries  []model.Country `yaml:"countries"`
	Theme      Theme           `yaml:"theme"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Server struct {
	Addr string `yaml:"addr"`
	// RateLimit caps requests per IP per RateWindow; 0 disables limiting.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
	// Metrics exposes Prometheus collectors on GET /metrics.
	Metrics bool `yaml:"metrics"`
}

// Theme selects a variant of the built-in manifest and overrides tokens.
type Theme struct {
	Variant string            `yaml:"variant"`
	Tokens  map[string]string `yaml:"tokens"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Title:      "Dynamic Form Builder",
		Log:        Log{Level: "info", Format: "json"},
		IDs:        model.IDStrategySequence,
		Visibility: VisibilityExpr,
		Server: Server{
			Addr:       ":8080",
			RateWindow: time.Minute,
			Metrics:    true,
		},
		Countries: model.DefaultCountries(),
	}
}

// Load reads path (optional) on top of the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TITLE", &cfg.Title)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("IDS", &cfg.IDs)
	str("VISIBILITY", &cfg.Visibility)
	str("ADDR", &cfg.Server.Addr)
	str("THEME_VARIANT", &cfg.Theme.Variant)

	if v, ok := lookup(envPrefix + "METRICS"); ok && strings.TrimSpace(v) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sMETRICS: %v", ErrInvalid, envPrefix, err)
		}
		cfg.Server.Metrics = enabled
	}
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sRATE_LIMIT: %v", ErrInvalid, envPrefix, err)
		}
		cfg.Server.RateLimit = n
	}
	if v, ok := lookup(envPrefix + "RATE_WINDOW"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sRATE_WINDOW: %v", ErrInvalid, envPrefix, err)
		}
		cfg.Server.RateWindow = d
	}
	return nil
}

// Validate reports every problem at once, joined.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch strings.ToLower(c.IDs) {
	case model.IDStrategySequence, model.IDStrategyUUID, model.IDStrategyTimestamp:
	default:
		fail("ids %q (want sequence, uuid or timestamp)", c.IDs)
	}
	switch strings.ToLower(c.Visibility) {
	case VisibilityAlways, VisibilityExpr:
	default:
		fail("visibility %q (want always or expr)", c.Visibility)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		fail("log.format %q (want json or console)", c.Log.Format)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		fail("server.addr is empty")
	}
	if c.Server.RateLimit < 0 {
		fail("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		fail("server.rate_window must be positive when rate_limit is set")
	}

	seen := make(map[string]struct{}, len(c.Countries))
	for i, country := range c.Countries {
		if strings.TrimSpace(country.Code) == "" || strings.TrimSpace(country.Name) == "" {
			fail("countries[%d] needs code and name", i)
			continue
		}
		if _, dup := seen[country.Code]; dup {
			fail("countries[%d] duplicates code %q", i, country.Code)
		}
		seen[country.Code] = struct{}{}
	}

	return errors.Join(errs...)
}
