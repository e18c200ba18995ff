package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yingtu35/link-verifier/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.ErrorLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"WARNING", zerolog.WarnLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"CRITICAL", zerolog.FatalLevel, false},
		{"chatty", zerolog.ErrorLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Site = "https://example.test/docs"
	cfg.DirLogs = "logs"
	cfg.LoggingLevel = "INFO"
	cfg.DateFormatFilename = "%Y%m%d_%H%M%S"

	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	got := FileName(cfg, now)
	want := filepath.Join("logs", "example.test_docs_2_info_20240309_140507.log")
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestNewFormatsTimestamp(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LoggingLevel = "INFO"
	cfg.DateFormatLog = "%d/%m/%Y"

	var buf bytes.Buffer
	logger, err := New(&buf, cfg)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info().Str("page", "https://example.test/").Msg("checking")
	logger.Debug().Msg("filtered out")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatal(err)
	}
	ts, _ := event["time"].(string)
	if _, err := time.Parse("02/01/2006", ts); err != nil {
		t.Errorf("timestamp %q not in configured format: %v", ts, err)
	}
	if event["page"] != "https://example.test/" {
		t.Errorf("missing page field: %v", event)
	}
}

func TestSetupCreatesLogFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Site = "https://example.test/"
	cfg.DirLogs = filepath.Join(t.TempDir(), "nested", "logs")
	cfg.LoggingLevel = "ERROR"
	cfg.LogFormat = "json"

	now := time.Now()
	logger, closer, err := Setup(cfg, now)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	logger.Error().Msg("broken link")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(FileName(cfg, now))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "broken link") {
		t.Errorf("log file missing message: %q", data)
	}
}
