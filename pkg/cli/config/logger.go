package config

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
	"github.com/teamsense-lab/argus/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for logger configuration
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logger configuration
func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("ARGUS_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("ARGUS_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination (stdout, stderr or a file path)",
			Category:    "Logging",
			Value:       "stdout",
			Sources:     cli.EnvVars("ARGUS_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

// Configure builds the process-wide logger from the flags and installs
// it as the default. The returned closer must be called before exit
// when the output is a file.
func (x *Logger) Configure() (func(), error) {
	var level slog.Level
	switch strings.ToLower(x.level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("invalid log level", goerr.V("level", x.level))
	}

	var format logging.Format
	switch strings.ToLower(x.format) {
	case "console", "":
		format = logging.FormatConsole
	case "json":
		format = logging.FormatJSON
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", x.format))
	}

	closer := func() {}
	var w *os.File
	switch x.output {
	case "stdout", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(x.output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			safe.Close(context.Background(), f)
		}
	}

	logging.SetDefault(logging.New(w, level, format))
	return closer, nil
}
