package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewLogger initializes a new slog logger based on the provided
// configuration. Text output uses a tinted handler with colors enabled
// only when writing to a terminal.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	level := new(slog.Level)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = new(slog.Level)
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: level,
		})
	case "text":
		fallthrough
	default:
		handler = tint.NewHandler(output, &tint.Options{
			Level:   level,
			NoColor: !isTerminal(output),
		})
	}

	return slog.New(handler)
}

func isTerminal(output io.Writer) bool {
	f, ok := output.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
