// Package catalog is the SQLite state store shared by all series.
//
// It keeps two tables: series_items, the insertion-ordered membership of every
// tracked series together with each item's resolved identity, and http_cache,
// archive API responses reused for a configurable TTL. Membership only grows;
// nothing in the pipeline deletes rows from series_items.
package catalog
