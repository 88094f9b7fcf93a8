package download

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// YTDLPEngine resolves a track through yt-dlp's search and downloads the
// first hit as MP3. It needs no pre-ranked URL, which makes it the natural
// last source in the fallback chain.
type YTDLPEngine struct {
	downloadDir string
}

// NewYTDLPEngine creates the yt-dlp backed download engine.
func NewYTDLPEngine(downloadDir string) *YTDLPEngine {
	return &YTDLPEngine{downloadDir: downloadDir}
}

func (e *YTDLPEngine) Name() string { return "yt-dlp" }

// Fetch synthesizes a search query from artist and trackName, downloads the
// best hit, and returns the local file path. ref is ignored.
func (e *YTDLPEngine) Fetch(ctx context.Context, _, artist, trackName string) (string, error) {
	if err := e.checkAvailable(); err != nil {
		return "", err
	}

	// Per-fetch directory keeps the post-run file lookup from seeing other
	// jobs' downloads.
	fetchDir := filepath.Join(e.downloadDir, uuid.New().String())
	if err := os.MkdirAll(fetchDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create fetch directory: %w", err)
	}

	outputPath := filepath.Join(fetchDir, "track.mp3")
	query := fmt.Sprintf("ytsearch1:%s %s official audio", artist, trackName)

	args := []string{
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"--no-playlist",
		"-o", outputPath,
		query,
	}

	slog.Debug("executing yt-dlp", "query", query, "output", outputPath)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		removeFetchDir(fetchDir)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("yt-dlp command failed", "error", err, "stderr", stderrBuf.String())
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}

	// yt-dlp replaces the extension during post-processing, so the exact
	// name is only known after the run; the lookup stays inside fetchDir.
	downloadedFile, err := finishFetch(fetchDir, e.downloadDir)
	if err != nil {
		return "", err
	}

	VerifyTags(downloadedFile, artist, trackName)

	slog.Info("downloaded via yt-dlp search", "file", downloadedFile)
	return downloadedFile, nil
}

// checkAvailable verifies that yt-dlp is installed and on PATH.
func (e *YTDLPEngine) checkAvailable() error {
	cmd := exec.Command("yt-dlp", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: yt-dlp: %v", ErrToolNotAvailable, err)
	}
	return nil
}
