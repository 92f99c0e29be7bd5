package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"meetscribe/internal/config"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("IA_ACCESS_KEY", "access")
	t.Setenv("IA_SECRET_KEY", "secret")
}

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	setCredentials(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "meetscribe")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.StateDB != filepath.Join(wantData, "meetscribe.db") {
		t.Fatalf("unexpected state db: %q", cfg.Paths.StateDB)
	}
	if cfg.Archive.AccessKey != "access" || cfg.Archive.SecretKey != "secret" {
		t.Fatalf("expected credentials from env, got %q/%q", cfg.Archive.AccessKey, cfg.Archive.SecretKey)
	}
	if len(cfg.Archive.PreferredFormats) != 1 || cfg.Archive.PreferredFormats[0] != "h.264" {
		t.Fatalf("unexpected preferred formats: %v", cfg.Archive.PreferredFormats)
	}
	if cfg.Archive.LookbackDays != 31 {
		t.Fatalf("unexpected lookback days: %d", cfg.Archive.LookbackDays)
	}
	if cfg.Output.MaxDocumentBytes != 345000 {
		t.Fatalf("unexpected max document bytes: %d", cfg.Output.MaxDocumentBytes)
	}
	if cfg.Transcription.BeamSize != 5 {
		t.Fatalf("unexpected beam size: %d", cfg.Transcription.BeamSize)
	}
	if cfg.LockPath() != filepath.Join(wantData, "meetscribe.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("IA_ACCESS_KEY", "")
	t.Setenv("IA_SECRET_KEY", "")
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "archive.access_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	setCredentials(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg := config.Default()
	cfg.Paths.DataDir = "~/meetings"
	cfg.Archive.PreferredFormats = []string{" H.264 ", "h.264", "MPEG4"}
	cfg.Archive.StartDate = "2024-01-01"
	cfg.Series = []config.Series{
		{Name: "city_council", SearchQuery: "collection:council"},
		{Name: "planning", SearchQuery: "collection:planning", FileIdentifier: "Identifier", PreferredFormats: []string{"MPEG4"}},
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q %v", resolved, exists)
	}
	if loaded.Paths.DataDir != filepath.Join(tempHome, "meetings") {
		t.Fatalf("unexpected data dir: %q", loaded.Paths.DataDir)
	}
	if got := strings.Join(loaded.Archive.PreferredFormats, ","); got != "h.264,mpeg4" {
		t.Fatalf("unexpected normalized formats: %q", got)
	}
	council, ok := loaded.LookupSeries("city_council")
	if !ok {
		t.Fatal("expected city_council series")
	}
	if council.FileIdentifier != config.FileIdentifierTitle {
		t.Fatalf("expected title file identifier default, got %q", council.FileIdentifier)
	}
	if got := council.Formats(loaded.Archive.PreferredFormats); len(got) != 2 {
		t.Fatalf("expected archive formats fallback, got %v", got)
	}
	planning, _ := loaded.LookupSeries("planning")
	if planning.FileIdentifier != config.FileIdentifierIdentifier {
		t.Fatalf("unexpected file identifier: %q", planning.FileIdentifier)
	}
	if got := planning.Formats(loaded.Archive.PreferredFormats); len(got) != 1 || got[0] != "mpeg4" {
		t.Fatalf("expected series override formats, got %v", got)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	setCredentials(t)
	t.Setenv("HOME", t.TempDir())

	content := `
archive:
  start_date: "2023-06-01"
  preferred_formats: ["h.264"]
series:
  - name: school_board
    search_query: "collection:schoolboard"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Archive.StartDate != "2023-06-01" {
		t.Fatalf("unexpected start date: %q", cfg.Archive.StartDate)
	}
	if len(cfg.Series) != 1 || cfg.Series[0].Name != "school_board" {
		t.Fatalf("unexpected series: %+v", cfg.Series)
	}
	if cfg.Archive.BaseURL != "https://archive.org" {
		t.Fatalf("expected default base url retained, got %q", cfg.Archive.BaseURL)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad start date", func(c *config.Config) { c.Archive.StartDate = "01/02/2024" }, "archive.start_date"},
		{"end before start", func(c *config.Config) {
			c.Archive.StartDate = "2024-02-01"
			c.Archive.EndDate = "2024-01-01"
		}, "archive.end_date"},
		{"series without query", func(c *config.Config) {
			c.Series = []config.Series{{Name: "a", FileIdentifier: "title"}}
		}, "search_query"},
		{"duplicate series", func(c *config.Config) {
			c.Series = []config.Series{
				{Name: "a", SearchQuery: "q", FileIdentifier: "title"},
				{Name: "a", SearchQuery: "q", FileIdentifier: "title"},
			}
		}, "duplicated"},
		{"series path separator", func(c *config.Config) {
			c.Series = []config.Series{{Name: "a/b", SearchQuery: "q", FileIdentifier: "title"}}
		}, "directory name"},
		{"bad file identifier", func(c *config.Config) {
			c.Series = []config.Series{{Name: "a", SearchQuery: "q", FileIdentifier: "hash"}}
		}, "file_identifier"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"pyannote without token", func(c *config.Config) { c.Transcription.VADMethod = "pyannote" }, "hf_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Archive.AccessKey = "access"
			cfg.Archive.SecretKey = "secret"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	setCredentials(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Series) != 1 || cfg.Series[0].Name != "city_council" {
		t.Fatalf("unexpected sample series: %+v", cfg.Series)
	}
}

func TestParseSkipsValidation(t *testing.T) {
	t.Setenv("IA_ACCESS_KEY", "")
	t.Setenv("IA_SECRET_KEY", "")
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected Load to reject a sample without archive keys")
	}
	cfg, err := config.Parse(path)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cfg.Series) != 1 || cfg.Series[0].FileIdentifier != config.FileIdentifierTitle {
		t.Fatalf("expected normalized sample series, got %+v", cfg.Series)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "access_key") {
		t.Fatalf("expected credential error from Validate, got %v", err)
	}
}
