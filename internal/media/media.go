package media

import (
	"context"
	"errors"
)

// ErrNoPreferredFile reports an archive item that has no file in any of the
// preferred formats.
var ErrNoPreferredFile = errors.New("no file in a preferred format")

// Metadata is the display identity of an archive item. The three fields are
// always fetched together.
type Metadata struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Span is one raw utterance reported by a transcription engine, in seconds.
type Span struct {
	Start float64
	End   float64
	Text  string
}

// Resolver locates and fetches source videos.
type Resolver interface {
	// Search returns the identifiers matching query.
	Search(ctx context.Context, query string) ([]string, error)
	// Metadata returns the canonical URL, title, and date of an item.
	Metadata(ctx context.Context, identifier string) (Metadata, error)
	// PreferredFile returns the name of the first file whose format matches
	// one of formats, or an error wrapping ErrNoPreferredFile.
	PreferredFile(ctx context.Context, identifier string, formats []string) (string, error)
	// Download stores the named file of an item at dest.
	Download(ctx context.Context, identifier, fileName, dest string) error
}

// AudioExtractor converts a video file into mono 16 kHz speech audio.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

// Transcriber converts speech audio into an ordered list of spans.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]Span, error)
}
