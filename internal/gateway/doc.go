// Package gateway assembles the application: configuration in, a running
// HTTP server with the chat and assistant websocket endpoints out.
//
// Every shared component (directory, session store, message store, vector
// index, replay guard) is constructed here and handed to the pieces that
// need it; none of them are package-level singletons. Run blocks until the
// context is canceled, then shuts the server and components down in order.
package gateway
