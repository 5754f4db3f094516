package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Logger struct {
	level  string
	format string
	output string
	source bool
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("HELPDESK_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("HELPDESK_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log destination (stdout, stderr or a file path)",
			Category:    "Logging",
			Value:       "stdout",
			Sources:     cli.EnvVars("HELPDESK_LOG_OUTPUT"),
			Destination: &x.output,
		},
		&cli.BoolFlag{
			Name:        "log-source",
			Usage:       "Include source file and line in log records",
			Category:    "Logging",
			Sources:     cli.EnvVars("HELPDESK_LOG_SOURCE"),
			Destination: &x.source,
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

// Configure installs the default logger. The returned function closes the
// log file, if one was opened.
func (x *Logger) Configure() (func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(x.level)); err != nil {
		return nil, goerr.Wrap(ErrInvalidLogLevel, "unknown log level", goerr.V(LevelKey, x.level))
	}

	var format logging.Format
	switch strings.ToLower(x.format) {
	case "", "console":
		format = logging.FormatConsole
	case "json":
		format = logging.FormatJSON
	default:
		return nil, goerr.Wrap(ErrInvalidLogFormat, "unknown log format", goerr.V(FormatKey, x.format))
	}

	var w io.Writer
	closer := func() {}
	switch x.output {
	case "", "stdout", "-":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		// #nosec G304 - path is expected to be provided by CLI argument
		f, err := os.OpenFile(x.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	logging.SetDefault(logging.New(w, level, format, x.source))
	return closer, nil
}
