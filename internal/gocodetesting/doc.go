// Package gocodetesting provides helpers for tests that need source fixtures. WithFiles writes in-memory files into a throwaway directory,
// adding a package clause to Go files that lack one. Dedent strips common indentation from multi-line strings so inline fixtures can be indented
// with surrounding code. SplitCursor extracts a cursor marker from a fixture and returns the offset where it was.
package gocodetesting
