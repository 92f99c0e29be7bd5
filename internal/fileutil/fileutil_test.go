package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileCreatesParentAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "nested", "out.json")

	if err := WriteFile(dst, []byte("[]")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "[]" {
		t.Fatalf("content mismatch: got %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the published file, got %d entries", len(entries))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteStreamFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "video.mp4")

	if _, err := WriteStream(dst, failingReader{}); err == nil {
		t.Fatal("expected error")
	}
	if Exists(dst) {
		t.Fatal("expected destination to be absent after failure")
	}
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".part") {
			t.Fatalf("temporary file left behind: %s", entry.Name())
		}
	}
}

func TestWriteStreamCopies(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "video.mp4")
	n, err := WriteStream(dst, strings.NewReader("frames"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 || !Exists(dst) {
		t.Fatalf("unexpected result: n=%d exists=%v", n, Exists(dst))
	}
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone")
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("expected missing file to be ignored: %v", err)
	}
	if Exists(t.TempDir()) {
		t.Fatal("directories are not regular files")
	}
}
