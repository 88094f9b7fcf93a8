// Package audio provides duration probing for downloaded audio files.
// The fallback chain rejects candidates below a minimum duration, so the
// probe is the gate between a raw download and an accepted asset.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

var (
	ErrFileNotFound = fmt.Errorf("file not found")
	ErrFileEmpty    = fmt.Errorf("file is empty")
)

// probeError wraps ffprobe command errors with additional context
type probeError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *probeError) Error() string {
	return fmt.Sprintf("ffprobe error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *probeError) Unwrap() error {
	return e.wrapped
}

func newProbeError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &probeError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

// Prober measures the playable duration of an audio file.
type Prober interface {
	// ProbeDuration returns the duration in seconds, or 0 when the file
	// cannot be probed. A zero duration drives the caller to the next
	// acquisition source.
	ProbeDuration(ctx context.Context, path string) float64
}

type ffprobe struct{}

// NewFFProbe returns a prober backed by the ffprobe binary, with a pure-Go
// MP3 decoder fallback for hosts without ffmpeg installed.
func NewFFProbe() *ffprobe {
	return &ffprobe{}
}

func validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

func (f *ffprobe) ProbeDuration(ctx context.Context, path string) float64 {
	if err := validateFile(path); err != nil {
		slog.Warn("duration probe skipped", "path", path, "error", err)
		return 0
	}

	seconds, err := f.probeWithFFProbe(ctx, path)
	if err == nil {
		return seconds
	}
	slog.Warn("ffprobe failed, trying decoder fallback", "path", path, "error", err)

	seconds, err = mp3Duration(path)
	if err != nil {
		slog.Warn("duration probe failed", "path", path, "error", err)
		return 0
	}
	return seconds
}

func (f *ffprobe) probeWithFFProbe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, newProbeError(cmd, output, err)
	}

	return ParseDuration(string(output))
}

// ParseDuration parses ffprobe's duration output ("245.106000\n") into seconds.
func ParseDuration(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "N/A" {
		return 0, fmt.Errorf("no duration in probe output")
	}

	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", trimmed, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %f", seconds)
	}
	return seconds, nil
}

// mp3Duration decodes the MP3 stream headers to compute duration without
// ffmpeg. Only MP3 is supported; other formats need ffprobe.
func mp3Duration(path string) (float64, error) {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return 0, fmt.Errorf("decoder fallback only supports mp3, got %s", filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return 0, fmt.Errorf("mp3 decode: %w", err)
	}

	// Length is the decoded stream size; samples are 2 channels x 2 bytes.
	const bytesPerSample = 4
	return float64(decoder.Length()) / bytesPerSample / float64(decoder.SampleRate()), nil
}
