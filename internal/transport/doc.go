// Package transport is the websocket edge of the gateway.
//
// Frames are JSON envelopes of {event, payload} in both directions. Each
// accepted connection gets an ID, an entry in the Hub, and a write pump
// draining its outbound channel; the handler goroutine itself runs the read
// loop, so inbound events on one connection are processed in order. The Hub
// implements the Notifier port the chat router and bot gateway write to,
// and it never blocks: events for a slow consumer are dropped.
//
// /ws carries presence and direct messages, /ws/bot carries assistant
// conversations. Both authenticate with a bearer token from the handshake
// query string or Authorization header.
package transport
