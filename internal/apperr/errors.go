// Package apperr defines the error taxonomy shared across layers. Callers
// wrap these sentinels with fmt.Errorf("%w: ...") and classify with errors.Is.
package apperr

import "errors"

var (
	// ErrValidation marks a malformed request. Maps to a 4xx response.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing entity. Maps to 404 or an SSE error frame.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failure in an external collaborator (LLM,
	// embeddings, vector store, object store, web search).
	ErrUpstream = errors.New("upstream error")

	// ErrMemoryWrite marks a best-effort memory write failure. Logged,
	// never surfaced to the client.
	ErrMemoryWrite = errors.New("memory write failed")

	// ErrConfig marks a template or configuration problem. Fatal at
	// startup, fallback at runtime.
	ErrConfig = errors.New("config error")

	// ErrIngest marks a document ingest failure, including unreadable or
	// empty sources.
	ErrIngest = errors.New("ingest error")
)
