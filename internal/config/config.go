// Package config loads the server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Whisper struct {
		Model     string `yaml:"model"`
		ModelPath string `yaml:"model_path"`
		Threads   int    `yaml:"threads"`
		Device    string `yaml:"device"`
		Language  string `yaml:"language"`
	} `yaml:"whisper"`

	Workers struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"workers"`

	Storage struct {
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
		Database  string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxFileSizeMB      int `yaml:"max_file_size_mb"`
		MaxDurationMinutes int `yaml:"max_duration_minutes"`
		MaxAnalyzeWords    int `yaml:"max_analyze_words"`
	} `yaml:"limits"`

	Diarization struct {
		Enabled        bool `yaml:"enabled"`
		GapThresholdMs int  `yaml:"gap_threshold_ms"`
	} `yaml:"diarization"`

	Logging struct {
		Level       string `yaml:"level"`
		BufferLines int    `yaml:"buffer_lines"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads the YAML configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills in defaults and
// validates the result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero values with the defaults the server runs with.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Whisper.Model == "" {
		cfg.Whisper.Model = "small"
	}
	if cfg.Whisper.Language == "" {
		cfg.Whisper.Language = "en"
	}
	if cfg.Workers.Count == 0 {
		cfg.Workers.Count = 2
	}
	if cfg.Workers.QueueSize == 0 {
		cfg.Workers.QueueSize = 100
	}
	if cfg.Storage.TempDir == "" {
		cfg.Storage.TempDir = "temp"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "outputs"
	}
	if cfg.Storage.Database == "" {
		cfg.Storage.Database = "transcripts.db"
	}
	if cfg.Cleanup.IntervalMinutes == 0 {
		cfg.Cleanup.IntervalMinutes = 30
	}
	if cfg.Cleanup.MaxAgeHours == 0 {
		cfg.Cleanup.MaxAgeHours = 24
	}
	if cfg.GoogleDrive.FolderName == "" {
		cfg.GoogleDrive.FolderName = "Transcripts"
	}
	if cfg.Limits.MaxFileSizeMB == 0 {
		cfg.Limits.MaxFileSizeMB = 500
	}
	if cfg.Limits.MaxAnalyzeWords == 0 {
		cfg.Limits.MaxAnalyzeWords = 200_000
	}
	if cfg.Diarization.GapThresholdMs == 0 {
		cfg.Diarization.GapThresholdMs = 1500
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.BufferLines == 0 {
		cfg.Logging.BufferLines = 1000
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}
	if cfg.Workers.Count < 1 {
		errs = append(errs, fmt.Errorf("workers.count must be positive, got %d", cfg.Workers.Count))
	}
	if cfg.Workers.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("workers.queue_size must be positive, got %d", cfg.Workers.QueueSize))
	}
	if cfg.Cleanup.IntervalMinutes < 1 {
		errs = append(errs, fmt.Errorf("cleanup.interval_minutes must be positive, got %d", cfg.Cleanup.IntervalMinutes))
	}
	if cfg.Cleanup.MaxAgeHours < 1 {
		errs = append(errs, fmt.Errorf("cleanup.max_age_hours must be positive, got %d", cfg.Cleanup.MaxAgeHours))
	}
	if cfg.Limits.MaxFileSizeMB < 1 {
		errs = append(errs, fmt.Errorf("limits.max_file_size_mb must be positive, got %d", cfg.Limits.MaxFileSizeMB))
	}
	if cfg.Limits.MaxAnalyzeWords < 1 {
		errs = append(errs, fmt.Errorf("limits.max_analyze_words must be positive, got %d", cfg.Limits.MaxAnalyzeWords))
	}
	if cfg.Diarization.GapThresholdMs < 0 {
		errs = append(errs, fmt.Errorf("diarization.gap_threshold_ms must not be negative, got %d", cfg.Diarization.GapThresholdMs))
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level))
	}
	return errors.Join(errs...)
}
