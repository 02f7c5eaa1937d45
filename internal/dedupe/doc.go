// Package dedupe suppresses replayed client message ids within a
// configurable window, so reconnect resends don't duplicate sends.
package dedupe
