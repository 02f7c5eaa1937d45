// Package auth verifies the bearer credentials clients present when opening
// a WebSocket connection.
//
// Tokens are HS256-signed JWTs whose "sub" claim carries the logical user ID.
// The gateway does not issue tokens during normal operation; the main
// application hands them out at login and both sides share the secret.
//
// A failed verification is fatal to that connection: the router closes it and
// the client must reconnect with a fresh token.
package auth
