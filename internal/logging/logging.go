// Package logging builds the zerolog loggers used by the mcproto command.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vango-dev/mcproto/internal/config"
)

// AppName is attached to every log line.
const AppName = "mcproto"

// Environment overrides, applied on top of the [log] section.
const (
	EnvLevel   = "MCPROTO_LOG_LEVEL"
	EnvPretty  = "MCPROTO_LOG_PRETTY"
	EnvNoColor = "MCPROTO_LOG_NOCOLOR"
)

var once sync.Once

// New builds a logger writing to w.
func New(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	cfg = applyEnv(cfg)

	out := w
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Str("app", AppName).Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ConfigureRuntime installs the process logger on stderr. Only the first
// call has an effect.
func ConfigureRuntime(cfg config.LogConfig) zerolog.Logger {
	once.Do(func() {
		log.Logger = New(os.Stderr, cfg)
	})
	return log.Logger
}

// ConfigureTests silences the global logger unless MCPROTO_LOG_LEVEL is set.
func ConfigureTests() {
	if os.Getenv(EnvLevel) == "" {
		log.Logger = zerolog.Nop()
		return
	}
	log.Logger = New(os.Stderr, config.LogConfig{Pretty: true})
}

func applyEnv(cfg config.LogConfig) config.LogConfig {
	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = v
	}
	if v, ok := envBool(EnvPretty); ok {
		cfg.Pretty = v
	}
	if v, ok := envBool(EnvNoColor); ok {
		cfg.NoColor = v
	}
	return cfg
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
