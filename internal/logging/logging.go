package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLevel     = "JHACK_LOGLEVEL"
	DefaultLevel = zerolog.WarnLevel
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // --log; falls back to JHACK_LOGLEVEL
	Output  io.Writer // console writer target, defaults to os.Stderr
	LogPath string    // optional file receiving JSON logs as well
	Getenv  func(string) string
}

// ParseLevel accepts zerolog level names plus the WARNING/CRITICAL spellings.
func ParseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DefaultLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "critical":
		return zerolog.FatalLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return DefaultLevel, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

// Configure replaces the global logger. The returned closer releases the log file, if any.
func Configure(cfg Config) (io.Closer, error) {
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	raw := cfg.Level
	if raw == "" {
		raw = getenv(EnvLevel)
	}
	level, err := ParseLevel(raw)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	var writer io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	var closer io.Closer = io.NopCloser(nil)

	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogPath, err)
		}
		writer = zerolog.MultiLevelWriter(writer, f)
		closer = f
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	if level != DefaultLevel {
		fmt.Fprintf(out, "::= Verbose mode (%s). =::\n", strings.ToUpper(level.String()))
	}
	return closer, nil
}
