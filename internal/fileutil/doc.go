// Package fileutil publishes artifact files atomically. Every stage writes to a
// temporary sibling and renames it into place, so a file at an artifact path is
// always complete.
package fileutil
