// Package logging builds the slog loggers used by the eventhub command.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatAuto = "auto"
)

// ParseLevel parses a level name. Unknown names yield slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// Options configures New.
type Options struct {
	// Level is the minimum level to output.
	Level slog.Level

	// Format is FormatText, FormatJSON or FormatAuto. Auto writes text to a
	// terminal and JSON elsewhere.
	Format string

	// Output is where records are written. Defaults to os.Stderr.
	Output io.Writer

	// Attrs are added to every record.
	Attrs []slog.Attr
}

// New creates a logger from opts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if useText(opts.Format, out) {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}
	if len(opts.Attrs) > 0 {
		handler = handler.WithAttrs(opts.Attrs)
	}
	return slog.New(handler)
}

func useText(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case FormatText:
		return true
	case FormatJSON:
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WithComponent returns a logger that tags records with a component name.
func WithComponent(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
