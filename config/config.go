package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server     ServerConfig     `yaml:"server"`
	Download   DownloadConfig   `yaml:"download"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Prediction PredictionConfig `yaml:"prediction"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DownloadConfig struct {
	// Dir is where acquired audio files live until the job releases them.
	Dir string `yaml:"dir"`

	// MinDurationSeconds is the shortest candidate the fallback chain accepts.
	MinDurationSeconds float64 `yaml:"min_duration_seconds"`

	// SearchRatePerSecond throttles calls to the search source.
	SearchRatePerSecond float64 `yaml:"search_rate_per_second"`
}

type AnalyzerConfig struct {
	// URL of the feature analyzer service.
	URL string `yaml:"url"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type PredictionConfig struct {
	// ModelStore selects where model files are loaded from: "local" or "gcs".
	ModelStore string `yaml:"model_store"`

	// ModelDir holds model files when ModelStore is "local".
	ModelDir string `yaml:"model_dir"`

	// Bucket and Prefix locate model files when ModelStore is "gcs".
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// LoadMode is "eager" (all models resident) or "lazy" (load per
	// prediction, release after) for memory-constrained deployments.
	LoadMode string `yaml:"load_mode"`

	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"`
	JobTimeoutSeconds int `yaml:"job_timeout_seconds"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Download.Dir == "" {
		config.Download.Dir = "/tmp/downloads"
	}

	if config.Download.MinDurationSeconds == 0 {
		config.Download.MinDurationSeconds = 60
	}

	if config.Download.SearchRatePerSecond == 0 {
		config.Download.SearchRatePerSecond = 1
	}

	if config.Analyzer.TimeoutSeconds == 0 {
		config.Analyzer.TimeoutSeconds = 120
	}

	if config.Prediction.ModelStore == "" {
		config.Prediction.ModelStore = "local"
	}

	if config.Prediction.ModelDir == "" {
		config.Prediction.ModelDir = "models"
	}

	if config.Prediction.LoadMode == "" {
		config.Prediction.LoadMode = "eager"
	}

	if config.Prediction.MaxConcurrentJobs <= 0 {
		config.Prediction.MaxConcurrentJobs = 4
	}

	if config.Prediction.JobTimeoutSeconds <= 0 {
		config.Prediction.JobTimeoutSeconds = 300
	}

	return config, nil
}
