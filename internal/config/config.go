package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations for artifacts, state, and logs.
type Paths struct {
	DataDir string `toml:"data_dir" yaml:"data_dir"`
	LogDir  string `toml:"log_dir" yaml:"log_dir"`
	StateDB string `toml:"state_db" yaml:"state_db"`
}

// Archive contains Internet Archive access and search settings.
type Archive struct {
	BaseURL          string   `toml:"base_url" yaml:"base_url"`
	AccessKey        string   `toml:"access_key" yaml:"access_key"`
	SecretKey        string   `toml:"secret_key" yaml:"secret_key"`
	PreferredFormats []string `toml:"preferred_formats" yaml:"preferred_formats"`
	StartDate        string   `toml:"start_date" yaml:"start_date"`
	EndDate          string   `toml:"end_date" yaml:"end_date"`
	LookbackDays     int      `toml:"lookback_days" yaml:"lookback_days"`
	SearchRows       int      `toml:"search_rows" yaml:"search_rows"`
	RequestTimeout   int      `toml:"request_timeout" yaml:"request_timeout"`
	DownloadTimeout  int      `toml:"download_timeout" yaml:"download_timeout"`
	CacheTTLSeconds  int      `toml:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}

// Transcription contains WhisperX settings.
type Transcription struct {
	WhisperXModel    string `toml:"whisperx_model" yaml:"whisperx_model"`
	CUDAEnabled      bool   `toml:"cuda_enabled" yaml:"cuda_enabled"`
	ComputeType      string `toml:"compute_type" yaml:"compute_type"`
	VADMethod        string `toml:"vad_method" yaml:"vad_method"`
	HuggingFaceToken string `toml:"hf_token" yaml:"hf_token"`
	Language         string `toml:"language" yaml:"language"`
	BeamSize         int    `toml:"beam_size" yaml:"beam_size"`
}

// FFmpeg contains audio extraction settings.
type FFmpeg struct {
	Binary string `toml:"binary" yaml:"binary"`
}

// Output contains document publication settings.
type Output struct {
	MaxDocumentBytes int `toml:"max_document_bytes" yaml:"max_document_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Series describes one tracked meeting video series.
type Series struct {
	Name             string   `toml:"name" yaml:"name"`
	SearchQuery      string   `toml:"search_query" yaml:"search_query"`
	PreferredFormats []string `toml:"preferred_formats" yaml:"preferred_formats"`
	FileIdentifier   string   `toml:"file_identifier" yaml:"file_identifier"`
}

// Config encapsulates all configuration values for meetscribe.
//
// Configuration sections by subsystem:
//   - Paths: data directory, state database, and logs
//   - Archive: Internet Archive credentials, search window, and response cache
//   - Transcription: WhisperX model and runtime settings
//   - FFmpeg: audio extraction binary
//   - Output: document chunk budget
//   - Logging: log format and level
//   - Series: the tracked meeting video series
type Config struct {
	Paths         Paths         `toml:"paths" yaml:"paths"`
	Archive       Archive       `toml:"archive" yaml:"archive"`
	Transcription Transcription `toml:"transcription" yaml:"transcription"`
	FFmpeg        FFmpeg        `toml:"ffmpeg" yaml:"ffmpeg"`
	Output        Output        `toml:"output" yaml:"output"`
	Logging       Logging       `toml:"logging" yaml:"logging"`
	Series        []Series      `toml:"series" yaml:"series"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/meetscribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// paths expanded. The second return value is the resolved path and the third reports
// whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := decode(file, resolvedPath, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Parse decodes and normalizes the file at path without validating it, for
// reporting on a file the user has yet to finish editing.
func Parse(path string) (*Config, error) {
	cfg := Default()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	if err := decode(file, path, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(r io.Reader, path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err := yaml.NewDecoder(r).Decode(cfg)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	default:
		return toml.NewDecoder(r).Decode(cfg)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	for _, name := range []string{"meetscribe.toml", "meetscribe.yaml"} {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
			return projectPath, true, nil
		}
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Paths.StateDB)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the advisory lock file guarding the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "meetscribe.lock")
}

// LookupSeries returns the series with the given name.
func (c *Config) LookupSeries(name string) (Series, bool) {
	for _, s := range c.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// Formats returns the series' preferred formats, falling back to the archive-wide list.
func (s Series) Formats(fallback []string) []string {
	if len(s.PreferredFormats) > 0 {
		return s.PreferredFormats
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath resolves a user-supplied path, expanding "~" and making it absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
