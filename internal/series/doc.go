// Package series tracks the archive items matching a named search.
//
// Refresh runs the search over a publication-date window and appends unseen
// identifiers; Materialize walks the tracked items in insertion order and
// ensures each one's artifact chain. Membership and resolved identities are
// stored in the catalog so a later run resumes without repeating work.
package series
