// Package transcript defines the timed transcript segment and its JSON form.
//
// A segment file is a JSON array of {"start","end","text","url_with_time"}
// objects in transcript order. Decoding is strict: a record missing any of the
// four keys fails with ErrMissingField rather than producing a zero value.
package transcript
