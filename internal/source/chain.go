// Package source implements the ranked acquisition fallback chain. Each
// configured source is tried at most once per job; a candidate is promoted
// to an owned asset only after passing the minimum-duration gate.
package source

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mpaterson/trackml/internal/asset"
	"github.com/mpaterson/trackml/internal/audio"
)

// ErrAcquisitionFailed means every configured source was exhausted without
// an acceptable candidate. It is terminal for the job; the chain never
// retries a source.
var ErrAcquisitionFailed = errors.New("no source produced an acceptable candidate")

// Source produces a downloaded candidate file for a track. A failed fetch
// is recoverable: the chain logs it and advances to the next source.
type Source interface {
	// Label identifies the source in results and logs.
	Label() string

	// Fetch downloads a candidate and returns its local path.
	Fetch(ctx context.Context, artist, trackName string) (string, error)
}

// Chain tries sources in configured order until one yields a candidate of
// acceptable duration.
type Chain struct {
	sources     []Source
	prober      audio.Prober
	minDuration float64
}

// NewChain builds a chain over the given sources. minDuration is the
// shortest candidate (in seconds) the chain accepts.
func NewChain(prober audio.Prober, minDuration float64, sources ...Source) *Chain {
	return &Chain{
		sources:     sources,
		prober:      prober,
		minDuration: minDuration,
	}
}

// Acquire returns the first duration-acceptable asset. Rejected candidates
// are released immediately; exhaustion returns ErrAcquisitionFailed.
func (c *Chain) Acquire(ctx context.Context, artist, trackName string) (*asset.Asset, error) {
	for _, src := range c.sources {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		path, err := src.Fetch(ctx, artist, trackName)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("source failed, trying next",
				"source", src.Label(),
				"artist", artist,
				"track", trackName,
				"error", err,
			)
			continue
		}

		duration := c.prober.ProbeDuration(ctx, path)
		candidate := asset.New(path, src.Label(), duration)

		if duration < c.minDuration {
			slog.Info("candidate rejected, too short",
				"source", src.Label(),
				"duration", duration,
				"min_duration", c.minDuration,
			)
			candidate.Release()
			continue
		}

		slog.Info("candidate accepted",
			"source", src.Label(),
			"path", path,
			"duration", duration,
		)
		return candidate, nil
	}

	return nil, ErrAcquisitionFailed
}
