package pipeline

import (
	"context"
	"sync"

	"github.com/mpaterson/trackml/internal/domain"
)

// ProcessBatch runs one job per request under the worker bound and returns
// results positionally aligned with the input, regardless of completion
// order. Malformed entries become error results without touching the
// acquisition chain, and one job's failure never affects its siblings.
func (p *Processor) ProcessBatch(ctx context.Context, reqs []domain.TrackRequest, debug bool) domain.BatchResult {
	results := make([]domain.TrackResult, len(reqs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.maxWorkers)

	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			results[i] = domain.TrackResult{Track: req.Key(), Error: err.Error()}
			continue
		}

		wg.Add(1)
		go func(i int, req domain.TrackRequest) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[i] = domain.TrackResult{Track: req.Key(), Error: ctx.Err().Error()}
				return
			}
			defer func() { <-semaphore }()

			results[i] = p.ProcessTrack(ctx, req, debug)
		}(i, req)
	}

	wg.Wait()
	return domain.BatchResult{Results: results}
}
