// Package rag holds the pure parts of the placement retrieval pipeline.
//
// It provides:
//   - text rendering of an offer joined with its student and company for embedding
//   - cosine similarity scoring used by the linear-scan ranking pass
//   - context assembly for the generation prompt
//
// Nothing here performs I/O; store access and provider calls live in services.
package rag
