package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the settings file is looked up when no path is given.
const DefaultPath = "config.json"

const envPrefix = "LINKCHECK_"

var (
	// ErrMissingSite is returned by Validate when no site URL is configured
	ErrMissingSite = errors.New("missing site URL")

	// ErrInvalidConfig is returned when a setting is out of range
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds every setting of a verification run. It is built once at
// startup and passed down by value.
type Config struct {
	Site string `json:"site" yaml:"site"`

	// logging
	LoggingLevel       string `json:"logging_level" yaml:"logging_level"`
	LogToConsole       bool   `json:"log_to_console" yaml:"log_to_console"`
	DirLogs            string `json:"dir_logs" yaml:"dir_logs"`
	DateFormatFilename string `json:"date_format_filename" yaml:"date_format_filename"`
	DateFormatLog      string `json:"date_format_log" yaml:"date_format_log"`
	LogFormat          string `json:"log_format" yaml:"log_format"`

	// traversal
	MaxDepth int    `json:"max_depth" yaml:"max_depth"`
	Policy   string `json:"policy" yaml:"policy"`
	Dedupe   bool   `json:"dedupe" yaml:"dedupe"`

	// browser
	Driver          string   `json:"driver" yaml:"driver"`
	Headless        bool     `json:"headless" yaml:"headless"`
	PageLoadTimeout Duration `json:"page_load_timeout" yaml:"page_load_timeout"`
	ReadyTimeout    Duration `json:"ready_timeout" yaml:"ready_timeout"`
	IframeTimeout   Duration `json:"iframe_timeout" yaml:"iframe_timeout"`

	// status checks
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	RetryAttempts  int      `json:"retry_attempts" yaml:"retry_attempts"`
	RetryBackoff   Duration `json:"retry_backoff" yaml:"retry_backoff"`
	RequestRate    float64  `json:"request_rate" yaml:"request_rate"`
	UserAgent      string   `json:"user_agent" yaml:"user_agent"`

	// end of run report
	ReportFile   string `json:"report_file" yaml:"report_file"`
	ReportFormat string `json:"report_format" yaml:"report_format"`
}

func DefaultConfig() Config {
	return Config{
		LoggingLevel:       "ERROR",
		LogToConsole:       false,
		DirLogs:            "logs",
		DateFormatFilename: "%Y%m%d_%H%M%S",
		DateFormatLog:      "%Y-%m-%d %H:%M:%S",
		LogFormat:          "console",
		MaxDepth:           2,
		Policy:             "healthy",
		Driver:             "playwright",
		Headless:           true,
		PageLoadTimeout:    DurationFrom(10 * time.Second),
		ReadyTimeout:       DurationFrom(10 * time.Second),
		IframeTimeout:      DurationFrom(3 * time.Second),
		RequestTimeout:     DurationFrom(5 * time.Second),
		RetryAttempts:      2,
		RetryBackoff:       DurationFrom(500 * time.Millisecond),
		ReportFormat:       "csv",
	}
}

// Load reads the settings file at path on top of the defaults. JSON files are
// decoded as JSON, anything else as YAML. On any failure the defaults are
// returned together with the error, so the caller can log it and carry on.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := decode(path, data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML config: %w", err)
		}
	}
	return nil
}

func loadEnvString(key string, result *string) {
	s, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	*result = s
}

func loadEnvInt(key string, result *int) {
	s, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return
	}
	*result = n
}

func loadEnvBool(key string, result *bool) {
	s, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return
	}
	*result = b
}

func loadEnvFloat(key string, result *float64) {
	s, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return
	}
	*result = f
}

func loadEnvDuration(key string, result *Duration) {
	s, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	var d Duration
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return
	}
	*result = d
}

// LoadFromEnv overrides settings from LINKCHECK_* environment variables.
// Unparsable values are ignored.
func (c *Config) LoadFromEnv() {
	loadEnvString("SITE", &c.Site)
	loadEnvString("LOGGING_LEVEL", &c.LoggingLevel)
	loadEnvBool("LOG_TO_CONSOLE", &c.LogToConsole)
	loadEnvString("DIR_LOGS", &c.DirLogs)
	loadEnvString("DATE_FORMAT_FILENAME", &c.DateFormatFilename)
	loadEnvString("DATE_FORMAT_LOG", &c.DateFormatLog)
	loadEnvString("LOG_FORMAT", &c.LogFormat)
	loadEnvInt("MAX_DEPTH", &c.MaxDepth)
	loadEnvString("POLICY", &c.Policy)
	loadEnvBool("DEDUPE", &c.Dedupe)
	loadEnvString("DRIVER", &c.Driver)
	loadEnvBool("HEADLESS", &c.Headless)
	loadEnvDuration("PAGE_LOAD_TIMEOUT", &c.PageLoadTimeout)
	loadEnvDuration("READY_TIMEOUT", &c.ReadyTimeout)
	loadEnvDuration("IFRAME_TIMEOUT", &c.IframeTimeout)
	loadEnvDuration("REQUEST_TIMEOUT", &c.RequestTimeout)
	loadEnvInt("RETRY_ATTEMPTS", &c.RetryAttempts)
	loadEnvDuration("RETRY_BACKOFF", &c.RetryBackoff)
	loadEnvFloat("REQUEST_RATE", &c.RequestRate)
	loadEnvString("USER_AGENT", &c.UserAgent)
	loadEnvString("REPORT_FILE", &c.ReportFile)
	loadEnvString("REPORT_FORMAT", &c.ReportFormat)
}

// Validate checks the settings a run cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site) == "" {
		return ErrMissingSite
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry_attempts must not be negative, got %d", ErrInvalidConfig, c.RetryAttempts)
	}
	if c.RequestRate < 0 {
		return fmt.Errorf("%w: request_rate must not be negative", ErrInvalidConfig)
	}
	for name, d := range map[string]Duration{
		"page_load_timeout": c.PageLoadTimeout,
		"request_timeout":   c.RequestTimeout,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	switch c.ReportFormat {
	case "csv", "json":
	default:
		return fmt.Errorf("%w: unknown report_format %q", ErrInvalidConfig, c.ReportFormat)
	}
	return nil
}
