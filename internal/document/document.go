package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"meetscribe/internal/fileutil"
	"meetscribe/internal/media"
	"meetscribe/internal/transcript"
)

// HeaderLines is the number of leading lines repeated at the top of every chunk:
// title, date, table header, and table separator.
const HeaderLines = 4

var cellPadding = regexp.MustCompile(` +\|`)

// Document is a rendered transcript split into its shared header and table rows.
type Document struct {
	Header string
	Lines  []string
}

// Render builds the Markdown transcript for an item.
func Render(meta media.Metadata, segments []transcript.Segment) Document {
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			FormatOffset(seg.Seconds()),
			seg.Text,
			"[source video](" + seg.URLWithTime + ")",
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## [%s](%s)\n", singleLine(meta.Title), meta.URL)
	fmt.Fprintf(&b, "### %s\n", singleLine(meta.Date))
	b.WriteString(RenderTable([]string{"Time", "Transcript", "Video"}, rows))

	lines := strings.Split(strings.TrimRight(cellPadding.ReplaceAllString(b.String(), "|"), "\n"), "\n")
	split := min(HeaderLines, len(lines))
	return Document{
		Header: strings.Join(lines[:split], "\n") + "\n",
		Lines:  lines[split:],
	}
}

// RenderTable renders a GitHub-flavoured Markdown table.
func RenderTable(header []string, rows [][]string) string {
	tw := table.NewWriter()
	style := table.StyleDefault
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		tw.AppendRow(row)
	}
	return tw.RenderMarkdown()
}

// FormatOffset renders whole seconds as H:MM:SS, prefixing whole days when present.
func FormatOffset(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	seconds %= 86400
	clock := fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}

// PlaceholderText is the document body recorded for items without a usable video.
func PlaceholderText(identifier string) string {
	return "Video file not found for " + identifier
}

// WritePlaceholder records that identifier has no usable video.
func WritePlaceholder(path, identifier string) error {
	return fileutil.WriteFile(path, []byte(PlaceholderText(identifier)))
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
