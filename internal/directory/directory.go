// ABOUTME: Maps logical user IDs to their currently-live connection IDs.
// ABOUTME: Last-connected-wins; one active connection per user at a time.

package directory

import (
	"log/slog"
	"sync"
)

// Directory tracks which connection currently belongs to each online user.
// A user has at most one live connection: registering a new connection for a
// user replaces any prior entry. All operations are safe for concurrent use.
type Directory struct {
	mu      sync.RWMutex
	byUser  map[string]string // userID -> connID
	byConn  map[string]string // connID -> userID
	logger  *slog.Logger
}

// New creates an empty Directory. Pass nil logger for the default.
func New(logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
		logger: logger.With("component", "directory"),
	}
}

// Register records connID as the live connection for userID.
// Any previously registered connection for the same user is dropped.
func (d *Directory) Register(userID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.byUser[userID]; ok {
		delete(d.byConn, prev)
		d.logger.Debug("replacing connection for user",
			"user_id", userID,
			"old_conn_id", prev,
			"new_conn_id", connID,
		)
	}
	d.byUser[userID] = connID
	d.byConn[connID] = userID
	d.logger.Info("user online",
		"user_id", userID,
		"conn_id", connID,
		"online", len(d.byUser),
	)
}

// Unregister removes the entry for connID, if any. Returns the user that was
// bound to it and whether an entry existed. Calling it for a connection that
// never registered (for example, auth failed mid-handshake) is a no-op.
func (d *Directory) Unregister(connID string) (userID string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok = d.byConn[connID]
	if !ok {
		return "", false
	}
	delete(d.byConn, connID)

	// The user may have reconnected already; only drop the user entry if it
	// still points at this connection.
	if cur, exists := d.byUser[userID]; exists && cur == connID {
		delete(d.byUser, userID)
	}

	d.logger.Info("user offline",
		"user_id", userID,
		"conn_id", connID,
		"online", len(d.byUser),
	)
	return userID, true
}

// Resolve returns the live connection ID for userID, if the user is online.
func (d *Directory) Resolve(userID string) (connID string, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	connID, ok = d.byUser[userID]
	return connID, ok
}

// UserFor returns the user bound to connID, if any.
func (d *Directory) UserFor(connID string) (userID string, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	userID, ok = d.byConn[connID]
	return userID, ok
}

// IsOnline reports whether userID has a live connection.
func (d *Directory) IsOnline(userID string) bool {
	_, ok := d.Resolve(userID)
	return ok
}

// OnlineUsers returns the IDs of all users with a live connection.
func (d *Directory) OnlineUsers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]string, 0, len(d.byUser))
	for id := range d.byUser {
		users = append(users, id)
	}
	return users
}
