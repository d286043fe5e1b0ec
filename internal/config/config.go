package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

// Config holds all application configuration
type Config struct {
	General   GeneralConfig       `toml:"general"`
	Scheduler SchedulerConfig     `toml:"scheduler"`
	LLM       LLMConfig           `toml:"llm"`
	Web       WebConfig           `toml:"web"`
	Logging   LoggingConfig       `toml:"logging"`
	Repos     []domain.Repository `toml:"repos"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	WorkDir      string `toml:"work_dir"`
	OutputDir    string `toml:"output_dir"`
	DatabasePath string `toml:"database_path"`
}

// SchedulerConfig holds the job scheduler settings
type SchedulerConfig struct {
	MaxConcurrentJobs   int      `toml:"max_concurrent_jobs"`
	MaxQueueSize        int      `toml:"max_queue_size"`
	MaxCompletedHistory int      `toml:"max_completed_history"`
	DefaultJobTimeout   Duration `toml:"default_job_timeout"`
	CleanupInterval     Duration `toml:"cleanup_interval"`
	HistoryMaxAge       Duration `toml:"history_max_age"`
}

// LLMConfig holds settings for the local LLM service
type LLMConfig struct {
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
}

// WebConfig holds the status API settings
type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			WorkDir:      filepath.Join(home, ".docsmith", "repos"),
			OutputDir:    filepath.Join(home, ".docsmith", "docs"),
			DatabasePath: filepath.Join(home, ".docsmith", "docsmith.db"),
		},
		Scheduler: SchedulerConfig{
			MaxConcurrentJobs:   3,
			MaxQueueSize:        100,
			MaxCompletedHistory: 200,
			DefaultJobTimeout:   Duration(30 * time.Minute),
			CleanupInterval:     Duration(time.Hour),
			HistoryMaxAge:       Duration(24 * time.Hour),
		},
		LLM: LLMConfig{
			BaseURL:     "http://127.0.0.1:11434",
			Model:       "qwen2.5-coder:14b",
			MaxTokens:   8000,
			Temperature: 0.2,
			Timeout:     Duration(5 * time.Minute),
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.General.WorkDir = ExpandPath(cfg.General.WorkDir)
	cfg.General.OutputDir = ExpandPath(cfg.General.OutputDir)
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)

	return cfg, nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "docsmith", "config.toml")
}
