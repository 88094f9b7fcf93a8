package download

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Supported audio file extensions
const supportedAudioExtensions = ".mp3,.m4a,.wav,.flac"

// SCDLEngine downloads SoundCloud track pages using the scdl CLI.
type SCDLEngine struct {
	downloadDir string
}

// NewSCDLEngine creates the scdl-backed download engine.
func NewSCDLEngine(downloadDir string) *SCDLEngine {
	return &SCDLEngine{downloadDir: downloadDir}
}

func (e *SCDLEngine) Name() string { return "scdl" }

// Fetch downloads the track at ref into a per-fetch directory and returns
// the downloaded file path.
func (e *SCDLEngine) Fetch(ctx context.Context, ref, artist, trackName string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("scdl requires a track URL")
	}

	if err := e.checkAvailable(); err != nil {
		return "", err
	}

	// Per-fetch directory keeps concurrent jobs from seeing each other's
	// files when locating the download.
	outputDir := filepath.Join(e.downloadDir, uuid.New().String())
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-l", ref,
		"--path", outputDir,
		"--onlymp3",
		"--no-playlist-folder",
		"--overwrite",
	}

	slog.Debug("executing scdl", "url", ref, "dir", outputDir)

	cmd := exec.CommandContext(ctx, "scdl", args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		removeFetchDir(outputDir)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("scdl command failed",
			"error", err,
			"stderr", stderrBuf.String(),
		)
		return "", fmt.Errorf("scdl download failed: %w", err)
	}

	downloadedFile, err := finishFetch(outputDir, e.downloadDir)
	if err != nil {
		return "", err
	}

	VerifyTags(downloadedFile, artist, trackName)

	slog.Info("downloaded from soundcloud", "file", downloadedFile)
	return downloadedFile, nil
}

// checkAvailable verifies that scdl is installed and on PATH.
func (e *SCDLEngine) checkAvailable() error {
	cmd := exec.Command("scdl", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: scdl: %v", ErrToolNotAvailable, err)
	}
	return nil
}

// findDownloadedFile finds the most recently written audio file in dir.
func findDownloadedFile(dir string) (string, error) {
	audioExtensions := strings.Split(supportedAudioExtensions, ",")
	var mostRecentFile string
	var mostRecentTime time.Time

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		for _, audioExt := range audioExtensions {
			if ext == audioExt {
				if info.ModTime().After(mostRecentTime) {
					mostRecentTime = info.ModTime()
					mostRecentFile = path
				}
				break
			}
		}

		return nil
	})

	if err != nil {
		return "", fmt.Errorf("error scanning output directory: %w", err)
	}

	if mostRecentFile == "" {
		return "", fmt.Errorf("%w: in directory %s", ErrNoAudioFiles, dir)
	}

	return mostRecentFile, nil
}
