package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArchive()
	c.normalizeTranscription()
	c.normalizeSeries()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDB) == "" {
		c.Paths.StateDB = filepath.Join(c.Paths.DataDir, defaultStateDBName)
	}
	if c.Paths.StateDB, err = expandPath(c.Paths.StateDB); err != nil {
		return fmt.Errorf("paths.state_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() {
	c.Archive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Archive.BaseURL), "/")
	if c.Archive.BaseURL == "" {
		c.Archive.BaseURL = defaultArchiveBaseURL
	}
	c.Archive.AccessKey = strings.TrimSpace(c.Archive.AccessKey)
	if c.Archive.AccessKey == "" {
		if value, ok := os.LookupEnv("IA_ACCESS_KEY"); ok {
			c.Archive.AccessKey = strings.TrimSpace(value)
		}
	}
	c.Archive.SecretKey = strings.TrimSpace(c.Archive.SecretKey)
	if c.Archive.SecretKey == "" {
		if value, ok := os.LookupEnv("IA_SECRET_KEY"); ok {
			c.Archive.SecretKey = strings.TrimSpace(value)
		}
	}
	c.Archive.PreferredFormats = normalizeFormats(c.Archive.PreferredFormats)
	if len(c.Archive.PreferredFormats) == 0 {
		c.Archive.PreferredFormats = append([]string(nil), DefaultPreferredFormats...)
	}
	c.Archive.StartDate = strings.TrimSpace(c.Archive.StartDate)
	c.Archive.EndDate = strings.TrimSpace(c.Archive.EndDate)
	if c.Archive.LookbackDays == 0 {
		c.Archive.LookbackDays = defaultLookbackDays
	}
	if c.Archive.SearchRows == 0 {
		c.Archive.SearchRows = defaultSearchRows
	}
	if c.Archive.RequestTimeout == 0 {
		c.Archive.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
	c.Transcription.ComputeType = strings.ToLower(strings.TrimSpace(c.Transcription.ComputeType))
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.HuggingFaceToken = strings.TrimSpace(c.Transcription.HuggingFaceToken)
	if c.Transcription.HuggingFaceToken == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.HuggingFaceToken = strings.TrimSpace(value)
		}
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.BeamSize == 0 {
		c.Transcription.BeamSize = defaultBeamSize
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if c.Output.MaxDocumentBytes == 0 {
		c.Output.MaxDocumentBytes = defaultMaxDocumentBytes
	}
}

func (c *Config) normalizeSeries() {
	for i := range c.Series {
		s := &c.Series[i]
		s.Name = strings.TrimSpace(s.Name)
		s.SearchQuery = strings.TrimSpace(s.SearchQuery)
		s.PreferredFormats = normalizeFormats(s.PreferredFormats)
		s.FileIdentifier = strings.ToLower(strings.TrimSpace(s.FileIdentifier))
		if s.FileIdentifier == "" {
			s.FileIdentifier = FileIdentifierTitle
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	seen := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
