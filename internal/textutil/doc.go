// Package textutil turns archive titles into names that are safe to use as
// artifact file stems.
package textutil
