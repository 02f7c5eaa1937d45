// Package vector holds the embedded similarity index behind the assistant's
// two semantic lookups: tour search and the training-phrase fallback.
//
// The index is chromem-go with two collections ("tours" and
// "training_phrases"), persisted under the configured data dir, or in-memory
// when no dir is given. The embedding function is injected, so production
// runs against an OpenAI-compatible embeddings endpoint while tests use a
// deterministic local function.
//
// Callers pass raw text; embedding the query is this package's concern.
// Timeouts are the caller's concern: every method takes a context.
package vector
