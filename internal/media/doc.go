// Package media declares the collaborator contracts the derivation pipeline
// depends on: locating and downloading source videos, extracting speech audio,
// and transcribing it. Concrete implementations live in internal/archive,
// internal/services/ffmpeg, and internal/services/whisperx.
package media
