package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// New returns a logger writing text to stderr and, when logFile is set,
// JSON lines to that file. The cleanup func closes the file.
func New(service, level, logFile string) (*slog.Logger, func() error, error) {
	if strings.TrimSpace(logFile) == "" {
		return NewWithWriters(service, level, os.Stderr, nil), func() error { return nil }, nil
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWithWriters(service, level, os.Stderr, file), file.Close, nil
}

// NewWithWriters fans out to a text handler on console and, if file is
// non-nil, a JSON handler on file.
func NewWithWriters(service, level string, console, file io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	consoleHandler := slog.NewTextHandler(console, opts)
	if file == nil {
		return slog.New(consoleHandler).With("service", service)
	}
	fileHandler := slog.NewJSONHandler(file, opts)
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler)).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
