// Package intent turns free-text utterances into typed intents for the
// assistant gateway.
//
// # Cascade
//
// Resolution is a layered-confidence cascade. Deterministic rules run first
// because they are exact and free; an embedded training-phrase index catches
// paraphrases the rules miss; a generative model is the last resort because
// it is the slowest and most expensive stage.
//
//	rules -> entity extraction -> domain gate -> detail pattern
//	      -> search heuristic -> phrase similarity -> generative model
//
// The first two fallback stages are behind the PhraseSearcher and Responder
// ports, so the pipeline itself stays synchronous, deterministic, and
// testable without network access.
//
// # Domain gate
//
// An utterance whose extracted activity is not tour-related short-circuits
// to unknown before either fallback stage runs. Genuine off-domain small
// talk therefore never reaches the generative model. This matches the
// production dispatcher's behavior and is kept intentionally.
//
// # Determinism
//
// Stages 1-5 are pure functions of the input string: the same utterance
// always produces the same intent and entities.
package intent
