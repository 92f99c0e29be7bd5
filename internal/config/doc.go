// Package config loads, normalizes, and validates meetscribe configuration.
//
// Configuration is read from TOML by default, or YAML when the file carries a
// .yaml/.yml extension. Load applies repository defaults, expands user paths,
// falls back to IA_ACCESS_KEY / IA_SECRET_KEY / HF_TOKEN environment variables,
// and rejects unusable settings before any pipeline work starts. CreateSample
// emits a commented starter file for `meetscribe config init`.
package config
