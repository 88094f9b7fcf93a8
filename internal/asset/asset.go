// Package asset provides scoped ownership of downloaded audio files.
// Exactly one job owns an asset; releasing it removes the file from disk.
package asset

import (
	"log/slog"
	"os"
	"sync"
)

// Asset is an accepted audio candidate owned by a single track job.
type Asset struct {
	Path     string
	Source   string
	Duration float64

	releaseOnce sync.Once
}

// New binds a downloaded file to a new asset.
func New(path, source string, duration float64) *Asset {
	return &Asset{Path: path, Source: source, Duration: duration}
}

// Release deletes the underlying file. It is idempotent and safe for
// concurrent use. Deletion failures are logged, never returned: cleanup
// must not mask the job's primary outcome.
func (a *Asset) Release() {
	if a == nil {
		return
	}
	a.releaseOnce.Do(func() {
		if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete audio file", "path", a.Path, "error", err)
			return
		}
		slog.Debug("deleted audio file", "path", a.Path)
	})
}
