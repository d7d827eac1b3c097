// Package logging holds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger. Stages derive child loggers from it with
// Stage.
var Logger zerolog.Logger

// Config selects level and output format.
type Config struct {
	Level      string
	Pretty     bool
	TimeFormat string
	Out        io.Writer // defaults to os.Stderr
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{Level: "info", Pretty: true, TimeFormat: time.RFC3339}
}

// Init replaces the global logger.
func Init(cfg Config) {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: cfg.TimeFormat}
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Stage returns a child logger tagged with the run id and stage name.
func Stage(runID, stage string) zerolog.Logger {
	return Logger.With().Str("run_id", runID).Str("stage", stage).Logger()
}

func Debug() *zerolog.Event { return Logger.Debug() }
func Info() *zerolog.Event  { return Logger.Info() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Error() *zerolog.Event { return Logger.Error() }

func init() {
	Init(DefaultConfig())
}
