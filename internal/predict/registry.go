package predict

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// LoadMode selects how the registry holds models in memory.
type LoadMode string

const (
	// LoadEager loads every catalog model at construction and keeps them
	// resident for the life of the process.
	LoadEager LoadMode = "eager"

	// LoadLazy loads a model per prediction and drops it immediately
	// after, trading latency for a small resident set. Used on
	// memory-constrained deployments; the prediction contract is the
	// same as eager mode.
	LoadLazy LoadMode = "lazy"
)

// Predictor produces a raw (unnormalized) prediction for one target.
type Predictor interface {
	Predict(ctx context.Context, target string, vec []float64) (float64, error)
}

// Registry is the in-process Predictor backed by a model Store.
type Registry struct {
	store Store
	mode  LoadMode

	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry builds a registry over store. In eager mode all catalog
// models are loaded now; targets whose model is missing are logged and
// skipped (their predictions come back as skipped, not as a boot failure).
func NewRegistry(ctx context.Context, store Store, mode LoadMode) (*Registry, error) {
	if mode != LoadEager && mode != LoadLazy {
		return nil, fmt.Errorf("unknown load mode %q", mode)
	}

	r := &Registry{
		store:  store,
		mode:   mode,
		models: make(map[string]*Model),
	}

	if mode == LoadEager {
		for _, target := range Targets() {
			m, err := r.load(ctx, target)
			if err != nil {
				slog.Warn("model unavailable at startup", "target", target, "error", err)
				continue
			}
			r.models[target] = m
		}
		if len(r.models) == 0 {
			return nil, fmt.Errorf("no models could be loaded")
		}
		slog.Info("models preloaded", "count", len(r.models))
	}

	return r, nil
}

// Predict evaluates the model for target on vec. In lazy mode the model is
// loaded for this call only and released afterwards.
func (r *Registry) Predict(ctx context.Context, target string, vec []float64) (float64, error) {
	if r.mode == LoadLazy {
		m, err := r.load(ctx, target)
		if err != nil {
			return 0, err
		}
		// Not retained: the model is garbage once this call returns.
		return m.Predict(vec)
	}

	r.mu.RLock()
	m, ok := r.models[target]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrModelNotFound, target)
	}
	return m.Predict(vec)
}

func (r *Registry) load(ctx context.Context, target string) (*Model, error) {
	rc, err := r.store.Open(ctx, target)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, err := LoadModel(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to load model for %s: %w", target, err)
	}
	return m, nil
}
