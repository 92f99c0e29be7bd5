// Package testsupport provides test configuration builders and an in-memory
// archive fake standing in for the resolver, extractor, and transcriber.
package testsupport
