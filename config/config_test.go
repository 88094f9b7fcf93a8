package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create a test config file
	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
server:
  port: "9090"
download:
  dir: /tmp/test-downloads
  min_duration_seconds: 45
analyzer:
  url: http://localhost:5001
prediction:
  model_store: local
  model_dir: testdata/models
  load_mode: lazy
  max_concurrent_jobs: 8
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the config
	cfg, err := Load(configPath)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/test-downloads", cfg.Download.Dir)
	assert.Equal(t, 45.0, cfg.Download.MinDurationSeconds)
	assert.Equal(t, "http://localhost:5001", cfg.Analyzer.URL)
	assert.Equal(t, "lazy", cfg.Prediction.LoadMode)
	assert.Equal(t, 8, cfg.Prediction.MaxConcurrentJobs)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "minimal_config.yaml")
	err := os.WriteFile(configPath, []byte("log_level: 0\n"), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/tmp/downloads", cfg.Download.Dir)
	assert.Equal(t, 60.0, cfg.Download.MinDurationSeconds)
	assert.Equal(t, "local", cfg.Prediction.ModelStore)
	assert.Equal(t, "eager", cfg.Prediction.LoadMode)
	assert.Equal(t, 4, cfg.Prediction.MaxConcurrentJobs)
	assert.Equal(t, 300, cfg.Prediction.JobTimeoutSeconds)
}

func TestLoadNonExistentFile(t *testing.T) {
	// Test loading a non-existent config file
	cfg, err := Load("non_existent_file.yaml")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create an invalid YAML file
	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
download:
  dir: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the invalid config
	cfg, err := Load(configPath)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
