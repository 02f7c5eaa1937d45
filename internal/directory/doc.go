// Package directory tracks the mapping between logical user identities and
// their live WebSocket connections.
//
// The directory is process-local and deliberately simple: a user is "online"
// while exactly one registered connection exists for them, and registering a
// second connection for the same user replaces the first (last-connected
// wins). Nothing is persisted; the directory is rebuilt naturally as clients
// reconnect after a restart.
//
// The chat router owns the lifecycle: it registers a connection after the
// bearer credential verifies, and unregisters it on disconnect. Presence
// broadcasts (userOnline/userOffline) are the router's responsibility, not
// the directory's.
//
// A multi-instance deployment would need to back this interface with a shared
// external store and fan deliveries out through pub/sub; the Register /
// Unregister / Resolve surface is kept narrow so that swap would not touch
// callers.
package directory
