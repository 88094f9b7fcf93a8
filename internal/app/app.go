// Package app wires the track processing pipeline from configuration. Both
// the HTTP server and the offline CLI build their processor here.
package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/mpaterson/trackml/config"
	"github.com/mpaterson/trackml/internal/audio"
	"github.com/mpaterson/trackml/internal/download"
	"github.com/mpaterson/trackml/internal/features"
	"github.com/mpaterson/trackml/internal/pipeline"
	"github.com/mpaterson/trackml/internal/predict"
	"github.com/mpaterson/trackml/internal/search"
	"github.com/mpaterson/trackml/internal/source"
)

// BuildProcessor wires the acquisition chain, analyzer client, and
// predictor from configuration.
func BuildProcessor(ctx context.Context, cfg *config.Config) (*pipeline.Processor, error) {
	scraper := search.NewScraper(cfg.Download.SearchRatePerSecond)
	primary := source.NewPrimarySource(scraper, download.NewSCDLEngine(cfg.Download.Dir))
	fallback := source.NewFallbackSource(download.NewYTDLPEngine(cfg.Download.Dir))

	chain := source.NewChain(
		audio.NewFFProbe(),
		cfg.Download.MinDurationSeconds,
		primary,
		fallback,
	)

	analyzerTimeout := time.Duration(cfg.Analyzer.TimeoutSeconds) * time.Second
	extractor := features.NewHTTPExtractor(cfg.Analyzer.URL, analyzerTimeout)

	predictor, err := buildPredictor(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return pipeline.NewProcessor(
		chain,
		extractor,
		predictor,
		cfg.Prediction.MaxConcurrentJobs,
		time.Duration(cfg.Prediction.JobTimeoutSeconds)*time.Second,
	), nil
}

// buildPredictor selects the remote inference service when
// INFERENCE_SERVICE_URL is set, otherwise an in-process model registry
// backed by the configured store.
func buildPredictor(ctx context.Context, cfg *config.Config) (predict.Predictor, error) {
	if url := os.Getenv("INFERENCE_SERVICE_URL"); url != "" {
		slog.Info("using remote inference service", "url", url)
		return predict.NewRemotePredictor(url, 60*time.Second), nil
	}

	var store predict.Store
	switch cfg.Prediction.ModelStore {
	case "gcs":
		gcs, err := predict.NewGCSStore(ctx, cfg.Prediction.Bucket, cfg.Prediction.Prefix, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if err != nil {
			return nil, err
		}
		store = gcs
	default:
		store = predict.NewLocalStore(cfg.Prediction.ModelDir)
	}

	return predict.NewRegistry(ctx, store, predict.LoadMode(cfg.Prediction.LoadMode))
}
