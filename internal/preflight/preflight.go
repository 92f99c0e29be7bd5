package preflight

import (
	"context"

	"meetscribe/internal/config"
	"meetscribe/internal/services/whisperx"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckBinary("FFmpeg", cfg.FFmpeg.Binary, "Required for audio extraction"),
		CheckBinary("uvx", whisperx.UVXCommand, "Required for WhisperX transcription"),
		CheckArchive(ctx, cfg),
	}
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
