package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"meetscribe/internal/media"
)

// FakeVideo describes one archive item served by FakeResolver.
type FakeVideo struct {
	Title  string
	Date   string
	File   string
	Format string
	Spans  []media.Span
}

// Calls counts collaborator invocations.
type Calls struct {
	Search        int
	Metadata      int
	PreferredFile int
	Download      int
	Extract       int
	Transcribe    int
}

// Total sums every counted invocation.
func (c Calls) Total() int {
	return c.Search + c.Metadata + c.PreferredFile + c.Download + c.Extract + c.Transcribe
}

// FakeArchive implements media.Resolver, media.AudioExtractor, and
// media.Transcriber over an in-memory catalogue. Downloaded "videos" contain
// the item identifier, extraction copies that content into the audio file, and
// transcription looks the identifier back up, so the whole chain can run
// without external tools.
type FakeArchive struct {
	mu        sync.Mutex
	Videos    map[string]FakeVideo
	Queries   []string
	SearchIDs []string
	Failures  map[string]error
	calls     Calls
}

// NewFakeArchive returns a fake serving the given items. Search returns them in
// identifier order unless SearchIDs is set.
func NewFakeArchive(videos map[string]FakeVideo) *FakeArchive {
	if videos == nil {
		videos = map[string]FakeVideo{}
	}
	return &FakeArchive{Videos: videos, Failures: map[string]error{}}
}

// Calls returns a snapshot of the invocation counters.
func (f *FakeArchive) Calls() Calls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Reset clears the invocation counters.
func (f *FakeArchive) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = Calls{}
	f.Queries = nil
}

func (f *FakeArchive) fail(op string) error {
	if err, ok := f.Failures[op]; ok {
		return err
	}
	return nil
}

func (f *FakeArchive) Search(_ context.Context, query string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Search++
	f.Queries = append(f.Queries, query)
	if err := f.fail("search"); err != nil {
		return nil, err
	}
	if f.SearchIDs != nil {
		return slices.Clone(f.SearchIDs), nil
	}
	ids := make([]string, 0, len(f.Videos))
	for id := range f.Videos {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *FakeArchive) Metadata(_ context.Context, identifier string) (media.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Metadata++
	if err := f.fail("metadata"); err != nil {
		return media.Metadata{}, err
	}
	v, ok := f.Videos[identifier]
	if !ok {
		return media.Metadata{}, fmt.Errorf("unknown identifier %q", identifier)
	}
	return media.Metadata{URL: "https://archive.org/details/" + identifier, Title: v.Title, Date: v.Date}, nil
}

func (f *FakeArchive) PreferredFile(_ context.Context, identifier string, formats []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.PreferredFile++
	v, ok := f.Videos[identifier]
	if !ok {
		return "", fmt.Errorf("unknown identifier %q", identifier)
	}
	for _, format := range formats {
		if v.File != "" && strings.EqualFold(format, v.Format) {
			return v.File, nil
		}
	}
	return "", fmt.Errorf("%s: %w", identifier, media.ErrNoPreferredFile)
}

func (f *FakeArchive) Download(_ context.Context, identifier, fileName, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Download++
	if err := f.fail("download"); err != nil {
		return err
	}
	if v, ok := f.Videos[identifier]; !ok || v.File != fileName {
		return fmt.Errorf("no file %q in %q", fileName, identifier)
	}
	return writeFile(dest, identifier)
}

func (f *FakeArchive) Extract(_ context.Context, videoPath, audioPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Extract++
	if err := f.fail("extract"); err != nil {
		return err
	}
	data, err := os.ReadFile(videoPath)
	if err != nil {
		return err
	}
	return writeFile(audioPath, string(data))
}

func (f *FakeArchive) Transcribe(_ context.Context, audioPath string) ([]media.Span, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Transcribe++
	if err := f.fail("transcribe"); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, err
	}
	v, ok := f.Videos[string(data)]
	if !ok {
		return nil, fmt.Errorf("audio %s does not name a known item", audioPath)
	}
	return slices.Clone(v.Spans), nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
