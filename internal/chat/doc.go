// Package chat routes direct messages, typing indicators, read receipts, and
// reactions between live connections.
//
// A connection moves through Connecting, Authenticated, Active, and
// Disconnected. The router owns the middle two: HandleConnect performs the
// Connecting to Authenticated transition and registration, every operation
// then acts on an Active connection, and HandleDisconnect finishes the
// lifecycle. Connection I/O belongs to the transport behind the Notifier
// port.
//
// Persistence comes first on every send: the store is the source of truth
// and live delivery is a bonus for whoever happens to be connected. An
// offline recipient simply fetches history on its next connect. A store
// failure during send is logged and swallowed, which means the sender can
// believe a message was stored when it was not. That weak guarantee is
// intentional.
package chat
