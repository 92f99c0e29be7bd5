// Command meetscribe turns public meeting videos from the Internet Archive into
// searchable, timestamped Markdown transcripts.
//
// Pipeline commands (run, refresh, materialize) take an exclusive lock on the
// data directory; status, preflight, and config commands do not.
package main
