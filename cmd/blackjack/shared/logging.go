package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a console logger on stderr.
func SetupLogger(level log.Level, prefix string) *log.Logger {
	return NewLogger(os.Stderr, level, prefix)
}

// NewLogger builds a timestamped logger writing to w.
func NewLogger(w io.Writer, level log.Level, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
	})
}

// SetupFileLogger logs to path, creating parent directories. An empty path
// discards everything. The returned closer must be called on exit.
func SetupFileLogger(path string, level log.Level, prefix string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return NewLogger(io.Discard, level, prefix), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          prefix,
		Formatter:       log.LogfmtFormatter,
	})
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
