// Package artifact implements the per-item derivation graph.
//
// An Item owns four on-disk artifacts, each derived from its predecessor:
//
//	video (downloaded) → audio (mono 16 kHz mp3) → segments (JSON) → document (Markdown)
//
// Item.Ensure(kind) materializes the requested artifact, computing only the
// missing tail of the chain. Presence is the only freshness check: an artifact
// that exists is never recomputed, so deleting a file is how an operator
// forces regeneration. Items without a video in a preferred format resolve to a
// placeholder document and are never retried.
package artifact
