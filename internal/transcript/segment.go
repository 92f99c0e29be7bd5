package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"meetscribe/internal/fileutil"
)

// ErrMissingField reports a segment record that lacks one of its required keys.
var ErrMissingField = errors.New("segment field missing")

// Segment is one timed utterance of a transcript, carrying a link that opens the
// source video at the utterance's start.
type Segment struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	URLWithTime string  `json:"url_with_time"`
}

// New builds a segment for videoURL. Start is truncated to whole seconds so the
// stored value, the rendered timestamp, and the link all agree.
func New(videoURL string, start, end float64, text string) Segment {
	start = math.Trunc(start)
	if end < start {
		end = start
	}
	return Segment{
		Start:       start,
		End:         end,
		Text:        text,
		URLWithTime: TimestampURL(videoURL, start),
	}
}

// TimestampURL returns videoURL with a start query for the given offset.
func TimestampURL(videoURL string, start float64) string {
	return videoURL + "?start=" + strconv.FormatInt(int64(start), 10)
}

// Seconds returns the integer start offset used for display.
func (s Segment) Seconds() int64 {
	return int64(s.Start)
}

type segmentRecord struct {
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
	Text        *string  `json:"text"`
	URLWithTime *string  `json:"url_with_time"`
}

// UnmarshalJSON decodes a segment, rejecting records with any key missing.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var rec segmentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	switch {
	case rec.Start == nil:
		return fmt.Errorf("%w: start", ErrMissingField)
	case rec.End == nil:
		return fmt.Errorf("%w: end", ErrMissingField)
	case rec.Text == nil:
		return fmt.Errorf("%w: text", ErrMissingField)
	case rec.URLWithTime == nil:
		return fmt.Errorf("%w: url_with_time", ErrMissingField)
	}
	*s = Segment{Start: *rec.Start, End: *rec.End, Text: *rec.Text, URLWithTime: *rec.URLWithTime}
	return nil
}

// Encode serializes one segment.
func Encode(s Segment) ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses one serialized segment.
func Decode(data []byte) (Segment, error) {
	var s Segment
	if err := json.Unmarshal(data, &s); err != nil {
		return Segment{}, fmt.Errorf("decode segment: %w", err)
	}
	return s, nil
}

// WriteFile persists the ordered segment set to path.
func WriteFile(path string, segments []Segment) error {
	if segments == nil {
		segments = []Segment{}
	}
	data, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	return fileutil.WriteFile(path, data)
}

// ReadFile loads a segment set written by WriteFile.
func ReadFile(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var segments []Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("decode segments %s: %w", path, err)
	}
	return segments, nil
}
