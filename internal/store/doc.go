// Package store provides persistence for direct messages, reactions, and
// assistant feedback.
//
// # Overview
//
// The gateway persists every direct message before attempting live delivery,
// so a recipient who is offline picks the message up from history on their
// next connect. The read flag is the only field ever mutated; nothing is
// deleted here.
//
// # Implementation
//
// SQLiteStore is the only implementation, built on modernc.org/sqlite (pure
// Go, no cgo) with WAL mode enabled. The schema is created on first open.
// Use ":memory:" as the path for tests.
//
// # Entities
//
//   - Message: direct message between two users, read flag per recipient pair
//   - Reaction: one emoji per (message, user); replaced on re-react
//   - Feedback: thumbs-up/down records from the assistant UI
package store
