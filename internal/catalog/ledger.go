package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meetscribe/internal/artifact"
	"meetscribe/internal/media"
)

// Entry is one tracked item of a series.
type Entry struct {
	Identifier string
	Identity   *artifact.Identity
	AddedAt    time.Time
}

// Ledger records the membership of one series in insertion order.
type Ledger struct {
	store  *Store
	series string
}

var _ artifact.Recorder = (*Ledger)(nil)

// Ledger returns the ledger of the named series.
func (s *Store) Ledger(series string) *Ledger {
	return &Ledger{store: s, series: series}
}

// Add tracks identifier, reporting false when it was already present.
func (l *Ledger) Add(ctx context.Context, identifier string) (bool, error) {
	res, err := l.store.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO series_items (series, identifier, position, added_at)
         VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM series_items WHERE series = ?), ?)`,
		l.series, identifier, l.series, l.store.timestamp(),
	)
	if err != nil {
		return false, fmt.Errorf("insert series item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// RecordIdentity stores the resolved identity of a tracked item.
func (l *Ledger) RecordIdentity(ctx context.Context, identifier string, identity artifact.Identity) error {
	res, err := l.store.db.ExecContext(ctx,
		`UPDATE series_items
            SET resolved = 1, url = ?, title = ?, date = ?, file_name = ?, missing = ?, resolved_at = ?
          WHERE series = ? AND identifier = ?`,
		identity.URL, identity.Title, identity.Date, identity.FileName, boolInt(identity.Missing), l.store.timestamp(),
		l.series, identifier,
	)
	if err != nil {
		return fmt.Errorf("update series item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("series %s has no item %s", l.series, identifier)
	}
	return nil
}

// Entries lists tracked items in insertion order.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := l.store.db.QueryContext(ctx,
		`SELECT identifier, resolved, url, title, date, file_name, missing, added_at
           FROM series_items WHERE series = ? ORDER BY position`,
		l.series,
	)
	if err != nil {
		return nil, fmt.Errorf("query series items: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry                      Entry
			resolved, missing          int
			url, title, date, fileName sql.NullString
			addedAt                    string
		)
		if err := rows.Scan(&entry.Identifier, &resolved, &url, &title, &date, &fileName, &missing, &addedAt); err != nil {
			return nil, fmt.Errorf("scan series item: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			entry.AddedAt = ts
		}
		if resolved == 1 {
			entry.Identity = &artifact.Identity{
				Metadata: media.Metadata{URL: url.String, Title: title.String, Date: date.String},
				FileName: fileName.String,
				Missing:  missing == 1,
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
