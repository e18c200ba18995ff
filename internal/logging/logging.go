// Package logging builds the run's zerolog logger: a log file named after the
// site and run settings, plus an optional console stream.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/rs/zerolog"

	"github.com/yingtu35/link-verifier/internal/config"
	"github.com/yingtu35/link-verifier/pkg/domain"
)

// ParseLevel accepts zerolog level names plus WARNING and CRITICAL, which
// older settings files use.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return zerolog.ErrorLevel, nil
	case "WARNING":
		return zerolog.WarnLevel, nil
	case "CRITICAL":
		return zerolog.FatalLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zerolog.ErrorLevel, fmt.Errorf("unknown logging level %q", name)
	}
	return lvl, nil
}

// FileName returns the log file path for a run started at now:
// <dir_logs>/<site slug>_<max depth>_<level>_<date>.log
func FileName(cfg config.Config, now time.Time) string {
	level := cfg.LoggingLevel
	if level == "" {
		level = config.DefaultConfig().LoggingLevel
	}
	name := fmt.Sprintf("%s_%d_%s_%s.log",
		domain.Slug(cfg.Site),
		cfg.MaxDepth,
		strings.ToLower(level),
		strftime.Format(cfg.DateFormatFilename, now),
	)
	return filepath.Join(cfg.DirLogs, name)
}

// timestampHook stamps every event with the configured strftime format.
type timestampHook struct {
	format string
	now    func() time.Time
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, strftime.Format(h.format, h.now()))
}

// New builds a logger writing to w. It is used by Setup and by tests.
func New(w io.Writer, cfg config.Config) (zerolog.Logger, error) {
	lvl, err := ParseLevel(cfg.LoggingLevel)
	logger := zerolog.New(w).
		Level(lvl).
		Hook(timestampHook{format: cfg.DateFormatLog, now: time.Now})
	return logger, err
}

func formatWriter(out io.Writer, cfg config.Config, noColor bool) io.Writer {
	if strings.EqualFold(cfg.LogFormat, "json") {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: noColor}
}

// Setup creates the log directory and file and returns the run logger. The
// returned closer releases the log file. An unknown level is reported as an
// error alongside a usable logger at the default level.
func Setup(cfg config.Config, now time.Time) (zerolog.Logger, io.Closer, error) {
	path := FileName(cfg, now)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	writers := []io.Writer{formatWriter(file, cfg, true)}
	if cfg.LogToConsole {
		writers = append(writers, formatWriter(os.Stderr, cfg, false))
	}

	logger, err := New(zerolog.MultiLevelWriter(writers...), cfg)
	return logger, file, err
}
