// Package chunkwriter splits a header plus body lines into numbered files of
// bounded size, repeating the header at the top of every file.
package chunkwriter
