package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charm "github.com/charmbracelet/log"
)

// Supported values for the log format setting.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatPretty = "pretty"
)

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// NewHandler builds the slog.Handler for the given format. "pretty" renders
// colourised, human-oriented lines through charmbracelet/log.
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	case FormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), nil
	case FormatPretty:
		return charm.NewWithOptions(w, charm.Options{
			Level:           charm.Level(level),
			ReportTimestamp: true,
		}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// New builds a Logger writing to w in the given format and level.
func New(w io.Writer, format, level string) (*SlogLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	h, err := NewHandler(w, format, lvl)
	if err != nil {
		return nil, err
	}
	return NewSlogLogger(slog.New(h)), nil
}
