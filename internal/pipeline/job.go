// Package pipeline runs track jobs: acquire audio, extract features,
// predict targets, clean up. Jobs never raise past their own boundary;
// every outcome is a TrackResult.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mpaterson/trackml/internal/asset"
	"github.com/mpaterson/trackml/internal/domain"
	"github.com/mpaterson/trackml/internal/features"
	"github.com/mpaterson/trackml/internal/predict"
)

// State names a track job phase, used for transition logging.
type State string

const (
	StateCreated    State = "created"
	StateAcquiring  State = "acquiring"
	StateExtracting State = "extracting"
	StatePredicting State = "predicting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Acquirer produces an owned audio asset for a track. source.Chain is the
// production implementation.
type Acquirer interface {
	Acquire(ctx context.Context, artist, trackName string) (*asset.Asset, error)
}

// Processor owns the shared, read-only handles jobs run against.
type Processor struct {
	acquirer   Acquirer
	extractor  features.Extractor
	predictor  predict.Predictor
	maxWorkers int
	jobTimeout time.Duration
}

// NewProcessor wires a processor from its collaborators. maxWorkers bounds
// batch concurrency; jobTimeout is the per-job deadline.
func NewProcessor(acquirer Acquirer, extractor features.Extractor, predictor predict.Predictor, maxWorkers int, jobTimeout time.Duration) *Processor {
	if maxWorkers < 1 {
		slog.Warn("invalid max workers, defaulting to 4", "maxWorkers", maxWorkers)
		maxWorkers = 4
	}
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	return &Processor{
		acquirer:   acquirer,
		extractor:  extractor,
		predictor:  predictor,
		maxWorkers: maxWorkers,
		jobTimeout: jobTimeout,
	}
}

func transition(key string, from, to State) State {
	slog.Debug("job state transition", "track", key, "from", string(from), "to", string(to))
	return to
}

// ProcessTrack runs one track job to completion and returns its outcome.
// Failures, including panics from collaborators, become error results; the
// acquired asset is released on every exit path.
func (p *Processor) ProcessTrack(ctx context.Context, req domain.TrackRequest, debug bool) (result domain.TrackResult) {
	key := req.Key()
	state := StateCreated

	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "track", key, "state", string(state), "panic", r)
			result = domain.TrackResult{Track: key, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	if err := req.Validate(); err != nil {
		return domain.TrackResult{Track: key, Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	slog.Info("processing track", "track", key)

	state = transition(key, state, StateAcquiring)
	audioAsset, err := p.acquirer.Acquire(ctx, req.Artist, req.TrackName)
	if err != nil {
		state = transition(key, state, StateFailed)
		slog.Error("acquisition failed", "track", key, "error", err)
		return domain.TrackResult{Track: key, Error: err.Error()}
	}
	defer audioAsset.Release()

	state = transition(key, state, StateExtracting)
	set, err := p.extractor.Extract(ctx, audioAsset.Path)
	if err != nil {
		state = transition(key, state, StateFailed)
		slog.Error("feature extraction failed", "track", key, "error", err)
		return domain.TrackResult{Track: key, Error: err.Error()}
	}

	if debug {
		slog.Info("base features", "track", key, "source", audioAsset.Source, "features", set)
	}

	state = transition(key, state, StatePredicting)
	predictions := predict.Assemble(ctx, p.predictor, set)

	state = transition(key, state, StateCompleted)
	slog.Info("track completed", "track", key, "source", audioAsset.Source)
	return domain.TrackResult{Track: key, Features: predictions}
}
