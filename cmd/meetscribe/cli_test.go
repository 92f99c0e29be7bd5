package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"meetscribe/internal/catalog"
	"meetscribe/internal/config"
	"meetscribe/internal/media"
	"meetscribe/internal/series"
	"meetscribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	fake       *testsupport.FakeArchive
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithSeries("council", "collection:council"))
	cfg.Archive.StartDate = "2024-01-01"
	cfg.Archive.EndDate = "2024-02-01"
	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	t.Setenv("HOME", homeDir)
	t.Setenv("IA_ACCESS_KEY", "")
	t.Setenv("IA_SECRET_KEY", "")

	configPath := filepath.Join(homeDir, ".config", "meetscribe", "config.toml")
	writeTestConfig(t, configPath, cfg)

	fake := testsupport.NewFakeArchive(map[string]testsupport.FakeVideo{
		"council-2024-01-08": {
			Title: "Council Regular Meeting", Date: "2024-01-08", File: "regular.mp4", Format: "h.264",
			Spans: []media.Span{
				{Start: 0, End: 4, Text: "Good evening."},
				{Start: 4, End: 9.5, Text: "First item."},
			},
		},
		"council-2024-01-15": {Title: "Council Work Session", Date: "2024-01-15", File: "session.ogv", Format: "ogg video"},
	})
	original := buildCollaborators
	buildCollaborators = func(*config.Config, *catalog.Store, *slog.Logger) (collaborators, error) {
		return collaborators{resolver: fake, extractor: fake, transcriber: fake}, nil
	}
	t.Cleanup(func() { buildCollaborators = original })

	return &cliTestEnv{cfg: cfg, configPath: configPath, fake: fake}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Series council: collection:council")

	t.Setenv("IA_ACCESS_KEY", "")
	t.Setenv("IA_SECRET_KEY", "")
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "Series city_council: collection:(citycouncilmeetings)")
	requireContains(t, out, "Before running meetscribe:")
	requireContains(t, out, "access_key")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRejectsMissingCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Archive.AccessKey = ""
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "access_key") {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestRunThenStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "council: 2 new item(s)")
	if len(env.fake.Queries) != 1 || env.fake.Queries[0] != "(collection:council) AND date:[2024-01-01 TO 2024-02-01]" {
		t.Fatalf("unexpected search queries %v", env.fake.Queries)
	}

	docDir := filepath.Join(env.cfg.Paths.DataDir, "markdown", "council")
	chunk, err := os.ReadFile(filepath.Join(docDir, "Council Regular Meeting_0.md"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	requireContains(t, string(chunk), "## [Council Regular Meeting](https://archive.org/details/council-2024-01-08)")
	placeholder, err := os.ReadFile(filepath.Join(docDir, "Council Work Session.md"))
	if err != nil {
		t.Fatalf("read placeholder: %v", err)
	}
	requireContains(t, string(placeholder), "Video file not found for council-2024-01-15")

	env.fake.Reset()
	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "council: 0 new item(s)")
	if calls := env.fake.Calls(); calls.Total() != 1 {
		t.Fatalf("second run should only search, got %+v", calls)
	}

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var snaps []series.Snapshot
	if err := json.Unmarshal([]byte(out), &snaps); err != nil {
		t.Fatalf("decode status json: %v\n%s", err, out)
	}
	if len(snaps) != 1 || len(snaps[0].Items) != 2 {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}
	if !snaps[0].Items[0].Document || !snaps[0].Items[1].Missing {
		t.Fatalf("unexpected item states %+v", snaps[0].Items)
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== council ==")
	requireContains(t, out, "2 tracked, 1 transcribed, 1 without video")
	requireContains(t, out, "missing video")
}

func TestRefreshThenMaterializeStage(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"refresh", "--series", "council", "--since", "2023-12-01"}, env.configPath)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	requireContains(t, out, "+ council-2024-01-08")
	if q := env.fake.Queries[0]; !strings.Contains(q, "date:[2023-12-01 TO 2024-02-01]") {
		t.Fatalf("--since not applied: %s", q)
	}
	if calls := env.fake.Calls(); calls.Download != 0 {
		t.Fatalf("refresh must not download, got %+v", calls)
	}

	if _, _, err := runCLI(t, []string{"materialize", "--stage", "audio"}, env.configPath); err != nil {
		t.Fatalf("materialize audio: %v", err)
	}
	calls := env.fake.Calls()
	if calls.Extract != 1 || calls.Transcribe != 0 {
		t.Fatalf("expected audio only, got %+v", calls)
	}

	if _, _, err := runCLI(t, []string{"materialize", "--stage", "subtitles"}, env.configPath); err == nil {
		t.Fatal("expected unknown stage to fail")
	}
	if _, _, err := runCLI(t, []string{"refresh", "--series", "planning"}, env.configPath); err == nil {
		t.Fatal("expected unknown series to fail")
	}
	if _, _, err := runCLI(t, []string{"refresh", "--since", "Jan 1"}, env.configPath); err == nil {
		t.Fatal("expected malformed --since to fail")
	}
}

func TestPipelineRefusesConcurrentRun(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := env.cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	lock := flock.New(env.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("acquire test lock: %v %v", ok, err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, []string{"refresh"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another meetscribe pipeline") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
	if calls := env.fake.Calls(); calls.Total() != 0 {
		t.Fatalf("locked run should not contact the archive, got %+v", calls)
	}
}
