package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Roots are the per-series directories holding each artifact kind.
type Roots struct {
	Video     string
	Audio     string
	Segments  string
	Documents string
}

// NewRoots lays out {dataDir}/{video,audio,segment,markdown}/{series}.
func NewRoots(dataDir, series string) Roots {
	return Roots{
		Video:     filepath.Join(dataDir, "video", series),
		Audio:     filepath.Join(dataDir, "audio", series),
		Segments:  filepath.Join(dataDir, "segment", series),
		Documents: filepath.Join(dataDir, "markdown", series),
	}
}

// Create makes every root directory.
func (r Roots) Create() error {
	for _, dir := range []string{r.Video, r.Audio, r.Segments, r.Documents} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory %q: %w", dir, err)
		}
	}
	return nil
}

// Paths are the four artifact locations of one item. Document is the
// unsuffixed stem; rendered transcripts live in numbered siblings.
type Paths struct {
	Video    string
	Audio    string
	Segments string
	Document string
}

func (r Roots) paths(baseName, videoExt string) Paths {
	return Paths{
		Video:    filepath.Join(r.Video, baseName+videoExt),
		Audio:    filepath.Join(r.Audio, baseName+".mp3"),
		Segments: filepath.Join(r.Segments, baseName+".json"),
		Document: filepath.Join(r.Documents, baseName+".md"),
	}
}
