package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"meetscribe/internal/services"
)

func TestExtractPublishesAudio(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "video", "m.mp4")
	audio := filepath.Join(dir, "audio", "m.mp3")
	if err := os.MkdirAll(filepath.Dir(audio), 0o755); err != nil {
		t.Fatal(err)
	}

	var gotName string
	var gotArgs []string
	ex := New("")
	ex.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
	})

	if err := ex.Extract(context.Background(), video, audio); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gotName != DefaultBinary {
		t.Fatalf("binary = %q", gotName)
	}
	for _, want := range [][]string{{"-i", video}, {"-ac", "1"}, {"-ar", "16000"}, {"-f", "mp3"}} {
		idx := slices.Index(gotArgs, want[0])
		if idx < 0 || gotArgs[idx+1] != want[1] {
			t.Fatalf("missing %v in %v", want, gotArgs)
		}
	}
	if gotArgs[len(gotArgs)-1] == audio {
		t.Fatal("ffmpeg must write to a temp file, not the final path")
	}
	data, err := os.ReadFile(audio)
	if err != nil || string(data) != "mp3" {
		t.Fatalf("audio not published: %q %v", data, err)
	}
}

func TestExtractFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "m.mp3")
	ex := New("/opt/ffmpeg")
	ex.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("exit status 1")
	})

	err := ex.Extract(context.Background(), filepath.Join(dir, "m.mp4"), audio)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files, found %v", entries)
	}
	if ex.Binary() != "/opt/ffmpeg" {
		t.Fatalf("binary = %q", ex.Binary())
	}
}
