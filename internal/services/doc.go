// Package services defines shared utilities consumed by the derivation stages
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp series names, archive identifiers, stage
//     names, and run identifiers for logging.
//   - Structured error markers plus the Wrap helper so every stage failure
//     carries the stage and operation that produced it.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
