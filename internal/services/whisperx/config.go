package whisperx

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// ComputeType overrides the device default (float16 on CUDA, float32 on CPU).
	ComputeType string
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// Language is the spoken language hint; empty lets WhisperX detect it.
	Language string
	// BeamSize is the decoder beam width.
	BeamSize int
}

// WhisperX configuration constants.
const (
	DefaultModel        = "large-v3"
	DefaultBeamSize     = 5
	CUDAIndexURL        = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL        = "https://pypi.org/simple"
	BatchSize           = "4"
	ChunkSize           = "15"
	VADOnset            = "0.08"
	VADOffset           = "0.07"
	Temperature         = "0.0"
	SegmentResolution   = "sentence"
	OutputFormat        = "json"
	CPUDevice           = "cpu"
	CUDADevice          = "cuda"
	CPUComputeType      = "float32"
	CUDAComputeType     = "float16"
	VADMethodPyannote   = "pyannote"
	VADMethodSilero     = "silero"
	UVXCommand          = "uvx"
	torchWeightsOnlyEnv = "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD"
)
