// Package whisperx turns speech audio into timed utterances by running
// WhisperX through uvx.
//
// The Service implements media.Transcriber. Each call writes WhisperX output
// into a scratch directory beside the audio file, reads the JSON result back
// as spans, and removes the scratch directory. Model, device, VAD method and
// language are passed via Config.
package whisperx
