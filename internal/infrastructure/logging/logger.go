package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-onewire/internal/infrastructure/config"
)

// serviceName tags every record so bridge logs are separable when a site
// aggregates several Gray Logic services into one stream.
const serviceName = "graylogic-onewire"

// Logger is the bridge's structured logger. It embeds *slog.Logger, so it
// satisfies the narrow Logger interfaces declared by the owserver,
// discovery, readings and mqtt packages without adapters.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml. Format is
// "json" (default) or "text"; output is "stdout" (default) or "stderr".
// Every record carries the service name and version.
func New(cfg config.LoggingConfig, version string) *Logger {
	return newLogger(cfg, version, writerFor(cfg.Output))
}

// Default is the bootstrap logger used before config.yaml is loaded:
// JSON to stdout at info level, version "dev".
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

func newLogger(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(handler)}
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps a config level string to slog. Unrecognised values
// fall back to info rather than failing startup.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a Logger that adds the given attributes to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a Logger scoped to one bridge subsystem, e.g.
// Component("scanner") or Component("poller"). The component attribute
// is the conventional filter key in bridge log queries.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}
