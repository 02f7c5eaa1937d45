// Package bot runs assistant conversations over a transport-agnostic
// notification port.
//
// One Gateway serves every connection; all per-connection dialogue state
// lives in the session store. A turn is: typing on, parse input, maybe
// short-circuit a numeric follow-up against the last result list, otherwise
// resolve intent and dispatch, typing off. Nothing raised inside a turn
// reaches the connection: panics become a fixed error reply and the session
// is left as it was.
//
// Session updates are wholesale last-write-wins. Concurrent turns on the
// same connection may interleave around the search call; the store tolerates
// that without locking per turn, matching the single-owner model the session
// package documents.
package bot
