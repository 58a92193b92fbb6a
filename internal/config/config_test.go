package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formbuilder.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := load("", envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
title: Signup
log:
  level: debug
ids: uuid
visibility: always
server:
  addr: ":9000"
  rate_limit: 30
  rate_window: 30s
countries:
  - code: PK
    name: Pakistan
theme:
  variant: dark
  tokens:
    brand: "#000000"
`)

	cfg, err := load(path, envMap(map[string]string{
		"FORMBUILDER_ADDR":       ":9100",
		"FORMBUILDER_LOG_FORMAT": "console",
		"FORMBUILDER_IDS":        "",
		"FORMBUILDER_METRICS":    "false",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{
		Title:      "Signup",
		Log:        Log{Level: "debug", Format: "console"},
		IDs:        model.IDStrategyUUID,
		Visibility: VisibilityAlways,
		Server:     Server{Addr: ":9100", RateLimit: 30, RateWindow: 30 * time.Second},
		Countries:  []model.Country{{Code: "PK", Name: "Pakistan"}},
		Theme:      Theme{Variant: "dark", Tokens: map[string]string{"brand": "#000000"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "colour: blue\n")
	if _, err := load(path, envMap(nil)); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(writeConfig(t, ""), envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Parallel()

	_, err := load("", envMap(map[string]string{"FORMBUILDER_RATE_LIMIT": "lots"}))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*Config){
		"ids":        func(c *Config) { c.IDs = "random" },
		"visibility": func(c *Config) { c.Visibility = "sometimes" },
		"format":     func(c *Config) { c.Log.Format = "xml" },
		"addr":       func(c *Config) { c.Server.Addr = " " },
		"rate":       func(c *Config) { c.Server.RateLimit = -1 },
		"window":     func(c *Config) { c.Server.RateLimit = 5; c.Server.RateWindow = 0 },
		"country":    func(c *Config) { c.Countries = []model.Country{{Code: "US"}} },
		"duplicate":  func(c *Config) { c.Countries = []model.Country{{Code: "US", Name: "A"}, {Code: "US", Name: "B"}} },
	}
	for name, mutate := range cases {
		name, mutate := name, mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
