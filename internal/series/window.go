package series

import (
	"fmt"
	"strings"
	"time"

	"meetscribe/internal/config"
)

// DefaultLookbackDays is the refresh window length when no start date is configured.
const DefaultLookbackDays = 31

// Window is the inclusive publication-date range searched by Refresh.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowOptions holds the optional overrides used to compute a Window.
type WindowOptions struct {
	StartDate    string
	EndDate      string
	LookbackDays int
}

// Resolve computes the window relative to now. The end defaults to tomorrow so
// items dated today are included; the start defaults to LookbackDays before today.
func (w WindowOptions) Resolve(now time.Time) (Window, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	end := today.AddDate(0, 0, 1)
	if value := strings.TrimSpace(w.EndDate); value != "" {
		parsed, err := time.Parse(config.DateLayout, value)
		if err != nil {
			return Window{}, fmt.Errorf("parse end date %q: %w", value, err)
		}
		end = parsed
	}

	lookback := w.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	start := today.AddDate(0, 0, -lookback)
	if value := strings.TrimSpace(w.StartDate); value != "" {
		parsed, err := time.Parse(config.DateLayout, value)
		if err != nil {
			return Window{}, fmt.Errorf("parse start date %q: %w", value, err)
		}
		start = parsed
	}

	if end.Before(start) {
		return Window{}, fmt.Errorf("window end %s precedes start %s", end.Format(config.DateLayout), start.Format(config.DateLayout))
	}
	return Window{Start: start, End: end}, nil
}

// BuildQuery constrains base to the window's publication dates.
func BuildQuery(base string, w Window) string {
	return fmt.Sprintf("(%s) AND date:[%s TO %s]",
		strings.TrimSpace(base),
		w.Start.Format(config.DateLayout),
		w.End.Format(config.DateLayout),
	)
}
