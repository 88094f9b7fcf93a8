package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mpaterson/trackml/internal/download"
	"github.com/mpaterson/trackml/internal/search"
)

// PrimarySource searches for the track page, ranks the results, and pulls
// the best match with the primary download engine.
type PrimarySource struct {
	client search.Client
	engine download.Engine
}

func NewPrimarySource(client search.Client, engine download.Engine) *PrimarySource {
	return &PrimarySource{client: client, engine: engine}
}

func (s *PrimarySource) Label() string { return "primary" }

func (s *PrimarySource) Fetch(ctx context.Context, artist, trackName string) (string, error) {
	results, err := s.client.Search(ctx, trackName, artist)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	best := search.BestMatch(results, trackName, artist)
	if best == nil {
		return "", fmt.Errorf("no suitable match for %q by %q", trackName, artist)
	}
	slog.Debug("ranked best match", "url", best.URL, "title", best.Title)

	return s.engine.Fetch(ctx, best.URL, artist, trackName)
}

// FallbackSource delegates matching entirely to a search-capable download
// engine using a query synthesized from artist and track name.
type FallbackSource struct {
	engine download.Engine
}

func NewFallbackSource(engine download.Engine) *FallbackSource {
	return &FallbackSource{engine: engine}
}

func (s *FallbackSource) Label() string { return "fallback" }

func (s *FallbackSource) Fetch(ctx context.Context, artist, trackName string) (string, error) {
	return s.engine.Fetch(ctx, "", artist, trackName)
}
