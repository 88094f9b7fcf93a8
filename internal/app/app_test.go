package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpaterson/trackml/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Download.Dir = t.TempDir()
	cfg.Download.MinDurationSeconds = 60
	cfg.Download.SearchRatePerSecond = 1
	cfg.Analyzer.URL = "http://localhost:9999"
	cfg.Analyzer.TimeoutSeconds = 5
	cfg.Prediction.ModelStore = "local"
	cfg.Prediction.ModelDir = t.TempDir()
	cfg.Prediction.LoadMode = "lazy"
	cfg.Prediction.MaxConcurrentJobs = 2
	cfg.Prediction.JobTimeoutSeconds = 30
	return cfg
}

func TestBuildProcessorLocalStore(t *testing.T) {
	processor, err := BuildProcessor(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, processor)
}

func TestBuildProcessorRemoteInference(t *testing.T) {
	t.Setenv("INFERENCE_SERVICE_URL", "http://localhost:9998")

	cfg := testConfig(t)
	cfg.Prediction.ModelStore = "gcs"

	// The remote service takes precedence, so no store is ever opened.
	processor, err := BuildProcessor(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, processor)
}

func TestBuildProcessorRejectsUnknownLoadMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Prediction.LoadMode = "sometimes"

	_, err := BuildProcessor(context.Background(), cfg)
	assert.Error(t, err)
}
