package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the archive search window.
const DateLayout = "2006-01-02"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSeries(); err != nil {
		return err
	}
	if c.Output.MaxDocumentBytes < 0 {
		return errors.New("output.max_document_bytes must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/meetscribe/config.toml"
		}
		return fmt.Errorf("archive.access_key and archive.secret_key are required. Set IA_ACCESS_KEY and IA_SECRET_KEY env vars or edit %s (create with 'meetscribe config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Archive.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("archive.base_url must be an absolute URL, got %q", c.Archive.BaseURL)
	}
	var start, end time.Time
	if c.Archive.StartDate != "" {
		if start, err = time.Parse(DateLayout, c.Archive.StartDate); err != nil {
			return fmt.Errorf("archive.start_date must be YYYY-MM-DD: %w", err)
		}
	}
	if c.Archive.EndDate != "" {
		if end, err = time.Parse(DateLayout, c.Archive.EndDate); err != nil {
			return fmt.Errorf("archive.end_date must be YYYY-MM-DD: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return errors.New("archive.end_date must not be before archive.start_date")
	}
	if c.Archive.LookbackDays < 0 {
		return errors.New("archive.lookback_days must be positive")
	}
	if c.Archive.SearchRows < 0 {
		return errors.New("archive.search_rows must be positive")
	}
	if c.Archive.RequestTimeout < 0 || c.Archive.DownloadTimeout < 0 {
		return errors.New("archive timeouts must not be negative")
	}
	if c.Archive.CacheTTLSeconds < 0 {
		return errors.New("archive.cache_ttl_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.BeamSize < 0 {
		return errors.New("transcription.beam_size must be positive")
	}
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.VADMethod == "pyannote" && c.Transcription.HuggingFaceToken == "" {
		return errors.New("transcription.hf_token is required when vad_method is pyannote")
	}
	return nil
}

func (c *Config) validateSeries() error {
	seen := make(map[string]struct{}, len(c.Series))
	for i, s := range c.Series {
		if s.Name == "" {
			return fmt.Errorf("series[%d].name must be set", i)
		}
		if strings.ContainsAny(s.Name, `/\`) || s.Name == "." || s.Name == ".." {
			return fmt.Errorf("series[%d].name %q must be usable as a directory name", i, s.Name)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("series name %q is duplicated", s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.SearchQuery == "" {
			return fmt.Errorf("series %q: search_query must be set", s.Name)
		}
		switch s.FileIdentifier {
		case FileIdentifierTitle, FileIdentifierIdentifier:
		default:
			return fmt.Errorf("series %q: file_identifier must be %q or %q, got %q", s.Name, FileIdentifierTitle, FileIdentifierIdentifier, s.FileIdentifier)
		}
	}
	return nil
}
