package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/riahtu/pmtrain/internal/logging"
)

type Config struct {
	DataDir            string
	DBPath             string
	UserPipelineDir    string
	ProjectPipelineDir string
	LogLevel           slog.Level
	LogFormat          logging.Format
}

func New() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dataDir := getEnv("PMTRAIN_DATA_DIR", filepath.Join(homeDir, ".pmtrain"))

	level, err := logging.ParseLevel(getEnv("PMTRAIN_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("PMTRAIN_LOG_LEVEL: %w", err)
	}
	format, err := logging.ParseFormat(getEnv("PMTRAIN_LOG_FORMAT", "text"))
	if err != nil {
		return nil, fmt.Errorf("PMTRAIN_LOG_FORMAT: %w", err)
	}

	c := &Config{
		DataDir:            dataDir,
		DBPath:             filepath.Join(dataDir, "pmtrain.db"),
		UserPipelineDir:    filepath.Join(dataDir, "pipelines"),
		ProjectPipelineDir: filepath.Join(".pmtrain", "pipelines"),
		LogLevel:           level,
		LogFormat:          format,
	}

	return c, nil
}

func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(c.UserPipelineDir, 0755); err != nil {
		return err
	}
	return nil
}

func (c *Config) WorkspacesDir() string {
	return filepath.Join(c.DataDir, "workspaces")
}

// PipelineDirs lists where named pipelines are looked up; project
// definitions override user ones.
func (c *Config) PipelineDirs() []string {
	return []string{c.UserPipelineDir, c.ProjectPipelineDir}
}

func (c *Config) Logger() *slog.Logger {
	return logging.New(logging.Config{Level: c.LogLevel, Format: c.LogFormat, Service: "pmtrain"})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
