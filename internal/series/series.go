package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"meetscribe/internal/artifact"
	"meetscribe/internal/catalog"
	"meetscribe/internal/logging"
	"meetscribe/internal/services"
)

// Options configures a Series.
type Options struct {
	Name     string
	Query    string
	Pipeline *artifact.Pipeline
	// Ledger persists membership and identity. Nil keeps the series in memory.
	Ledger *catalog.Ledger
	Window WindowOptions
	Now    func() time.Time
	Logger *slog.Logger
}

// Series is a named archive search whose matching items are tracked in
// insertion order. Membership only grows.
type Series struct {
	name     string
	query    string
	pipeline *artifact.Pipeline
	ledger   *catalog.Ledger
	window   WindowOptions
	now      func() time.Time
	logger   *slog.Logger

	order []string
	items map[string]*artifact.Item
}

// New validates opts and returns an empty series.
func New(opts Options) (*Series, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, services.Wrap(services.ErrConfiguration, "series", "new", "series name required", nil)
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "series", "new", "search query required for "+name, nil)
	}
	if opts.Pipeline == nil {
		return nil, services.Wrap(services.ErrConfiguration, "series", "new", "pipeline required for "+name, nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Series{
		name:     name,
		query:    opts.Query,
		pipeline: opts.Pipeline,
		ledger:   opts.Ledger,
		window:   opts.Window,
		now:      now,
		logger:   logging.NewComponentLogger(logger, "series"),
		items:    make(map[string]*artifact.Item),
	}, nil
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// SearchQuery returns the base archive query without the date window.
func (s *Series) SearchQuery() string { return s.query }

// Roots returns the artifact directories of the series.
func (s *Series) Roots() artifact.Roots { return s.pipeline.Roots }

// Contains reports whether identifier is already tracked.
func (s *Series) Contains(identifier string) bool {
	_, ok := s.items[identifier]
	return ok
}

// Insert tracks identifier, returning false if it was already present.
func (s *Series) Insert(identifier string, known *artifact.Identity) (*artifact.Item, bool) {
	if item, ok := s.items[identifier]; ok {
		return item, false
	}
	item := s.pipeline.NewItem(identifier, known)
	s.items[identifier] = item
	s.order = append(s.order, identifier)
	return item, true
}

// Items returns tracked items in insertion order.
func (s *Series) Items() []*artifact.Item {
	out := make([]*artifact.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Len returns the number of tracked items.
func (s *Series) Len() int { return len(s.order) }

// Query returns the date-constrained search for the current window.
func (s *Series) Query() (string, error) {
	w, err := s.window.Resolve(s.now())
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "refresh", "window", s.name, err)
	}
	return BuildQuery(s.query, w), nil
}

// Load rehydrates membership and resolved identities from the ledger.
func (s *Series) Load(ctx context.Context) error {
	if s.ledger == nil {
		return nil
	}
	entries, err := s.ledger.Entries(ctx)
	if err != nil {
		return fmt.Errorf("load series %s: %w", s.name, err)
	}
	for _, entry := range entries {
		s.Insert(entry.Identifier, entry.Identity)
	}
	s.logger.Debug("series loaded", logging.String(logging.FieldSeries, s.name), logging.Int("item_count", len(entries)))
	return nil
}

// Refresh searches the archive and tracks identifiers not seen before,
// returning them in search order.
func (s *Series) Refresh(ctx context.Context) ([]string, error) {
	ctx = services.WithStage(services.WithSeries(ctx, s.name), "refresh")
	logger := logging.WithContext(ctx, s.logger)

	query, err := s.Query()
	if err != nil {
		return nil, err
	}
	ids, err := s.pipeline.Resolver.Search(ctx, query)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "refresh", "search", s.name, err)
	}

	var added []string
	for _, id := range ids {
		if s.Contains(id) {
			continue
		}
		if s.ledger != nil {
			if _, err := s.ledger.Add(ctx, id); err != nil {
				return added, fmt.Errorf("persist %s: %w", id, err)
			}
		}
		s.Insert(id, nil)
		added = append(added, id)
	}
	logger.Info("series refreshed",
		logging.String("query", query),
		logging.Int("result_count", len(ids)),
		logging.Int("added_count", len(added)),
		logging.Int("item_count", s.Len()),
	)
	return added, nil
}

// MaterializeAll ensures every tracked item has a published document.
func (s *Series) MaterializeAll(ctx context.Context) error {
	return s.Materialize(ctx, artifact.KindDocument)
}

// Materialize ensures every tracked item has the artifact of the given kind,
// in insertion order. Items without a preferred-format video are skipped for
// non-document kinds. The first other failure aborts the pass.
func (s *Series) Materialize(ctx context.Context, kind artifact.Kind) error {
	ctx = services.WithSeries(ctx, s.name)
	logger := logging.WithContext(ctx, s.logger)

	owners := make(map[string]string, len(s.order))
	var skipped int
	for _, item := range s.Items() {
		if err := ctx.Err(); err != nil {
			return err
		}
		itemCtx := services.WithIdentifier(ctx, item.Identifier())
		if _, err := item.Ensure(itemCtx, kind); err != nil {
			if errors.Is(err, artifact.ErrVideoUnavailable) {
				skipped++
				continue
			}
			return fmt.Errorf("series %s item %s: %w", s.name, item.Identifier(), err)
		}
		s.checkCollision(itemCtx, owners, item)
	}
	logger.Info("series materialized",
		logging.String("kind", kind.String()),
		logging.Int("item_count", s.Len()),
		logging.Int("skipped_count", skipped),
	)
	return nil
}

func (s *Series) checkCollision(ctx context.Context, owners map[string]string, item *artifact.Item) {
	base, err := item.BaseName()
	if err != nil {
		return
	}
	owner, seen := owners[base]
	if !seen {
		owners[base] = item.Identifier()
		return
	}
	logging.Warn(logging.WithContext(ctx, s.logger), "items share an artifact name", logging.Notice{
		Event:  "base_name_collision",
		Hint:   "set file_identifier = \"identifier\" for this series",
		Impact: "later item reuses the earlier item's artifacts",
	},
		logging.String("base_name", base),
		logging.String("first_identifier", owner),
	)
}
