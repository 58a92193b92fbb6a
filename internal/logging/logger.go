// Package logging owns the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON = "json"
	// FormatConsole writes human readable lines for terminals.
	FormatConsole = "console"
)

// Config captures options for the base logger.
type Config struct {
	Level   string    // "debug", "info", ...; empty means info
	Format  string    // FormatJSON (default) or FormatConsole
	Output  io.Writer // defaults to os.Stderr
	Service string    // attached to every entry; defaults to "formbuilder"
}

var (
	mu         sync.RWMutex
	configured bool
	base       = zerolog.Nop()
)

// New builds a logger from cfg without touching the global one.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatJSON:
	case FormatConsole:
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	service := cfg.Service
	if service == "" {
		service = "formbuilder"
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger(), nil
}

// Configure installs the base logger. Only the first successful call has an
// effect; later calls return nil without changing anything.
func Configure(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()
	if configured {
		return nil
	}

	logger, err := New(cfg)
	if err != nil {
		return err
	}
	zerolog.TimeFieldFormat = time.RFC3339
	base = logger
	configured = true
	return nil
}

// Base returns the configured logger. Before Configure it discards output.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
