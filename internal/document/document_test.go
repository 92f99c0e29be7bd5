package document_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meetscribe/internal/document"
	"meetscribe/internal/media"
	"meetscribe/internal/transcript"
)

func TestFormatOffset(t *testing.T) {
	cases := map[int64]string{
		0:      "0:00:00",
		59:     "0:00:59",
		61:     "0:01:01",
		3600:   "1:00:00",
		45296:  "12:34:56",
		86400:  "1 day, 0:00:00",
		176400: "2 days, 1:00:00",
		-5:     "0:00:00",
	}
	for in, want := range cases {
		if got := document.FormatOffset(in); got != want {
			t.Fatalf("FormatOffset(%d) = %q want %q", in, got, want)
		}
	}
}

func TestRenderProducesHeaderAndRows(t *testing.T) {
	meta := media.Metadata{URL: "https://archive.org/details/itemA", Title: "Council Meeting", Date: "2024-01-02"}
	segs := []transcript.Segment{
		transcript.New(meta.URL, 0, 3.2, "Call to order."),
		transcript.New(meta.URL, 3.9, 7, "Roll call."),
		transcript.New(meta.URL, 3725.4, 3730, "Adjourned."),
	}

	doc := document.Render(meta, segs)

	headerLines := strings.Split(strings.TrimSuffix(doc.Header, "\n"), "\n")
	if len(headerLines) != document.HeaderLines {
		t.Fatalf("expected %d header lines, got %d: %q", document.HeaderLines, len(headerLines), doc.Header)
	}
	if headerLines[0] != "## [Council Meeting](https://archive.org/details/itemA)" {
		t.Fatalf("unexpected title line %q", headerLines[0])
	}
	if headerLines[1] != "### 2024-01-02" {
		t.Fatalf("unexpected date line %q", headerLines[1])
	}
	for _, col := range []string{"Time", "Transcript", "Video"} {
		if !strings.Contains(headerLines[2], col) {
			t.Fatalf("expected column %q in %q", col, headerLines[2])
		}
	}
	if !strings.Contains(headerLines[3], "---") {
		t.Fatalf("expected separator row, got %q", headerLines[3])
	}

	if len(doc.Lines) != len(segs) {
		t.Fatalf("expected %d body lines, got %d: %q", len(segs), len(doc.Lines), doc.Lines)
	}
	first := doc.Lines[0]
	for _, want := range []string{"0:00:00", "Call to order.", "[source video](https://archive.org/details/itemA?start=0)"} {
		if !strings.Contains(first, want) {
			t.Fatalf("expected %q in %q", want, first)
		}
	}
	if !strings.Contains(doc.Lines[2], "1:02:05") || !strings.Contains(doc.Lines[2], "?start=3725") {
		t.Fatalf("unexpected last row %q", doc.Lines[2])
	}
	for _, line := range append(headerLines[2:], doc.Lines...) {
		if strings.Contains(line, " |") {
			t.Fatalf("expected padding before pipes to be stripped: %q", line)
		}
	}
}

func TestRenderEmptyTranscript(t *testing.T) {
	doc := document.Render(media.Metadata{URL: "u", Title: "T", Date: "d"}, nil)
	if len(doc.Lines) != 0 {
		t.Fatalf("expected no body lines, got %q", doc.Lines)
	}
	if !strings.HasPrefix(doc.Header, "## [T](u)\n### d\n") {
		t.Fatalf("unexpected header %q", doc.Header)
	}
}

func TestRenderFlattensMultilineTitle(t *testing.T) {
	doc := document.Render(media.Metadata{URL: "u", Title: "Special\nSession", Date: "d"}, nil)
	if !strings.HasPrefix(doc.Header, "## [Special Session](u)\n") {
		t.Fatalf("unexpected header %q", doc.Header)
	}
}

func TestWritePlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markdown", "Missing.md")
	if err := document.WritePlaceholder(path, "itemZ"); err != nil {
		t.Fatalf("WritePlaceholder: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Video file not found for itemZ" {
		t.Fatalf("unexpected placeholder %q", data)
	}
}
