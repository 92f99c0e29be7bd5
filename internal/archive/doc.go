// Package archive is the Internet Archive client behind media.Resolver.
//
// It pages through advanced search results, reads item metadata (title, date,
// and file list) once per identifier, picks the first file in a preferred
// format, and streams downloads to disk. Every request carries the
// "LOW access:secret" authorization header. Search and metadata responses can
// be cached between runs through the Cache interface, which the catalog store
// implements.
package archive
