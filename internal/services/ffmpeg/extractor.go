// Package ffmpeg extracts speech audio from downloaded meeting videos.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"meetscribe/internal/fileutil"
	"meetscribe/internal/media"
	"meetscribe/internal/services"
)

// DefaultBinary is the ffmpeg executable looked up on PATH.
const DefaultBinary = "ffmpeg"

// Extractor converts video files into mono 16 kHz mp3 audio.
type Extractor struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

var _ media.AudioExtractor = (*Extractor)(nil)

// New returns an extractor invoking binary, or ffmpeg from PATH when empty.
func New(binary string) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Extractor{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// Binary returns the configured executable.
func (e *Extractor) Binary() string { return e.binary }

// Extract writes the audio track of videoPath to audioPath. The file appears
// at audioPath only once ffmpeg has finished successfully.
func (e *Extractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	tmp, err := fileutil.CreateTemp(audioPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "audio", "ffmpeg", "create temp audio file", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := e.run(ctx, buildArgs(videoPath, tmpPath)...); err != nil {
		_ = os.Remove(tmpPath)
		if ctx.Err() != nil {
			return services.Wrap(services.ErrTimeout, "audio", "ffmpeg", "extraction interrupted", ctx.Err())
		}
		return services.Wrap(services.ErrExternalTool, "audio", "ffmpeg", "extract audio", err)
	}
	if err := fileutil.Publish(tmpPath, audioPath); err != nil {
		return services.Wrap(services.ErrTransient, "audio", "ffmpeg", "publish audio file", err)
	}
	return nil
}

func (e *Extractor) run(ctx context.Context, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, e.binary, args...)
	}
	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "mp3",
		dest,
	}
}
