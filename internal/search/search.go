// Package search finds candidate track pages on SoundCloud by scraping
// search results and ranking them against the requested artist and title.
package search

import (
	"context"
	"errors"
)

var ErrNoResults = errors.New("no results in search")

// Result is one candidate entry from a search source.
type Result struct {
	Title  string
	Artist string
	URL    string
}

// Client performs a search for a track and returns raw candidates.
// Ranking is a separate step (BestMatch) so sources stay interchangeable.
type Client interface {
	Search(ctx context.Context, trackName, artist string) ([]Result, error)
}
