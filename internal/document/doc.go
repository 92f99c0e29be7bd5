// Package document renders transcript segments as a Markdown page: a linked
// title, the meeting date, and a Time | Transcript | Video table whose rows link
// to the video at each utterance. Cell padding before pipes is stripped to keep
// pages compact.
package document
