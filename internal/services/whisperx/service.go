package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"meetscribe/internal/media"
	"meetscribe/internal/services"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

var _ media.Transcriber = (*Service)(nil)

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load to weights_only by default, which breaks pyannote checkpoints.
	if os.Getenv(torchWeightsOnlyEnv) == "" {
		cmd.Env = append(os.Environ(), torchWeightsOnlyEnv+"=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs WhisperX on audioPath and returns its utterances in order.
func (s *Service) Transcribe(ctx context.Context, audioPath string) ([]media.Span, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "whisperx", "audio path required", nil)
	}
	workDir, err := os.MkdirTemp(filepath.Dir(audioPath), ".whisperx-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "whisperx", "create scratch directory", err)
	}
	defer os.RemoveAll(workDir)

	if err := s.run(ctx, UVXCommand, s.buildArgs(audioPath, workDir)...); err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "transcribe", "whisperx", "transcription interrupted", ctx.Err())
		}
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "whisperx failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	segments, err := LoadSegments(filepath.Join(workDir, baseName+".json"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "read whisperx output", err)
	}

	spans := make([]media.Span, 0, len(segments))
	for _, seg := range segments {
		spans = append(spans, media.Span{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)})
	}
	return spans, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 40)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	beam := s.cfg.BeamSize
	if beam <= 0 {
		beam = DefaultBeamSize
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", strconv.Itoa(beam),
		"--temperature", Temperature,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := isoLanguage(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	computeType := s.cfg.ComputeType
	if s.cfg.CUDAEnabled {
		if computeType == "" {
			computeType = CUDAComputeType
		}
		args = append(args, "--device", CUDADevice, "--compute_type", computeType)
	} else {
		if computeType == "" {
			computeType = CPUComputeType
		}
		args = append(args, "--device", CPUDevice, "--compute_type", computeType)
	}

	return args
}

// isoLanguage reduces a language tag such as "en-US" or "eng" to its two-letter base.
func isoLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}
