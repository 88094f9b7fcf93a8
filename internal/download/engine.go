// Package download provides the engines that fetch audio for a track.
// The primary engine pulls a matched SoundCloud URL with scdl; the fallback
// engine resolves a synthesized search query with yt-dlp.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrToolNotAvailable = fmt.Errorf("download tool not available")
	ErrNoAudioFiles     = fmt.Errorf("no audio files found")
	ErrFileTooSmall     = fmt.Errorf("file too small")
)

// Minimum file size to consider a download valid (100KB). A three-minute
// track at any sane bitrate is well above this.
const minValidFileSize = 100 * 1024

// Engine downloads the audio for one track reference into its directory.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string

	// Fetch downloads the audio identified by ref (a page URL for the
	// primary engine, ignored by search-based engines) and returns the
	// local file path.
	Fetch(ctx context.Context, ref, artist, trackName string) (string, error)
}

// finishFetch locates the audio file a tool produced in fetchDir, validates
// it, and moves it into destDir under a unique name. fetchDir is removed on
// every path, so a rejected or partial download leaves nothing on disk and
// concurrent fetches never see each other's files.
func finishFetch(fetchDir, destDir string) (string, error) {
	file, err := findDownloadedFile(fetchDir)
	if err != nil {
		removeFetchDir(fetchDir)
		return "", fmt.Errorf("failed to find downloaded file: %w", err)
	}

	if err := validateAudioFile(file); err != nil {
		removeFetchDir(fetchDir)
		return "", fmt.Errorf("downloaded file validation failed: %w", err)
	}

	finalPath := filepath.Join(destDir, uuid.New().String()+filepath.Ext(file))
	if err := os.Rename(file, finalPath); err != nil {
		removeFetchDir(fetchDir)
		return "", fmt.Errorf("failed to move downloaded file: %w", err)
	}

	removeFetchDir(fetchDir)
	return finalPath, nil
}

func removeFetchDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("failed to remove fetch directory", "dir", dir, "error", err)
	}
}

// validateAudioFile performs basic validation that a downloaded file is
// plausibly audio and not an HTML error page.
func validateAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() < minValidFileSize {
		return fmt.Errorf("%w: file size %d bytes is less than minimum %d bytes",
			ErrFileTooSmall, info.Size(), minValidFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file for validation: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %w", err)
	}
	header := buffer[:n]

	if looksLikeAudio(header) {
		return nil
	}

	checkLen := len(header)
	if checkLen > 100 {
		checkLen = 100
	}
	headerStr := strings.ToLower(string(header[:checkLen]))
	if strings.Contains(headerStr, "<html") || strings.Contains(headerStr, "<!doctype") {
		return fmt.Errorf("downloaded file appears to be HTML, not audio")
	}

	return nil
}

// looksLikeAudio checks the file header against common audio signatures.
func looksLikeAudio(header []byte) bool {
	if len(header) >= 3 && header[0] == 0xFF && (header[1]&0xE0) == 0xE0 {
		return true // MP3 frame header
	}
	if len(header) >= 3 && string(header[:3]) == "ID3" {
		return true // MP3 with ID3 tag
	}
	if len(header) >= 4 && string(header[:4]) == "RIFF" {
		return true // WAV
	}
	if len(header) >= 4 && string(header[:4]) == "fLaC" {
		return true // FLAC
	}
	if len(header) >= 4 && string(header[:4]) == "OggS" {
		return true // OGG
	}
	if len(header) >= 8 && string(header[4:8]) == "ftyp" {
		return true // M4A/MP4
	}
	return false
}
