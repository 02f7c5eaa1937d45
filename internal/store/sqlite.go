// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite.
// ABOUTME: Provides message/reaction/feedback persistence with automatic schema creation.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			from_user TEXT NOT NULL,
			to_user TEXT NOT NULL,
			body TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_pair
			ON messages(from_user, to_user, created_at);
		CREATE INDEX IF NOT EXISTS idx_messages_unread
			ON messages(to_user, read);

		CREATE TABLE IF NOT EXISTS reactions (
			message_id TEXT NOT NULL,
			from_user TEXT NOT NULL,
			emoji TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (message_id, from_user),
			FOREIGN KEY (message_id) REFERENCES messages(id)
		);

		CREATE TABLE IF NOT EXISTS bot_feedback (
			id TEXT PRIMARY KEY,
			connection_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			is_helpful INTEGER NOT NULL,
			response TEXT NOT NULL,
			comment TEXT,
			created_at DATETIME NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateMessage inserts a new direct message
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, from_user, to_user, body, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.FromUserID, msg.ToUserID, msg.Body, boolToInt(msg.Read), msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// GetMessage returns a single message by ID
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, from_user, to_user, body, read, created_at
		 FROM messages WHERE id = ?`, id)

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}
	return msg, nil
}

// GetConversation returns the most recent messages exchanged between two
// users, in either direction, oldest first.
func (s *SQLiteStore) GetConversation(ctx context.Context, userA, userB string, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_user, to_user, body, read, created_at FROM (
			SELECT id, from_user, to_user, body, read, created_at
			FROM messages
			WHERE (from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?)
			ORDER BY created_at DESC
			LIMIT ?
		) ORDER BY created_at ASC`,
		userA, userB, userB, userA, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanMessageRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkConversationRead flips unread messages from fromUserID to toUserID.
func (s *SQLiteStore) MarkConversationRead(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read = 1
		 WHERE from_user = ? AND to_user = ? AND read = 0`,
		fromUserID, toUserID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking conversation read: %w", err)
	}
	return res.RowsAffected()
}

// CountUnread returns the number of unread messages addressed to userID.
func (s *SQLiteStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE to_user = ? AND read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread: %w", err)
	}
	return count, nil
}

// UpsertReaction inserts or replaces the reacting user's reaction on a message.
func (s *SQLiteStore) UpsertReaction(ctx context.Context, reaction *Reaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reactions (message_id, from_user, emoji, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(message_id, from_user)
		 DO UPDATE SET emoji = excluded.emoji, updated_at = excluded.updated_at`,
		reaction.MessageID, reaction.FromUserID, reaction.Emoji, reaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting reaction: %w", err)
	}
	return nil
}

// GetReactions returns all reactions on a message.
func (s *SQLiteStore) GetReactions(ctx context.Context, messageID string) ([]*Reaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, from_user, emoji, updated_at
		 FROM reactions WHERE message_id = ? ORDER BY updated_at ASC`, messageID)
	if err != nil {
		return nil, fmt.Errorf("querying reactions: %w", err)
	}
	defer rows.Close()

	var reactions []*Reaction
	for rows.Next() {
		var r Reaction
		if err := rows.Scan(&r.MessageID, &r.FromUserID, &r.Emoji, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		reactions = append(reactions, &r)
	}
	return reactions, rows.Err()
}

// SaveFeedback records assistant feedback.
func (s *SQLiteStore) SaveFeedback(ctx context.Context, fb *Feedback) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bot_feedback (id, connection_id, message_id, is_helpful, response, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.ConnectionID, fb.MessageID, boolToInt(fb.IsHelpful), fb.Response, fb.Comment, fb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	var msg Message
	var read int
	if err := row.Scan(&msg.ID, &msg.FromUserID, &msg.ToUserID, &msg.Body, &read, &msg.CreatedAt); err != nil {
		return nil, err
	}
	msg.Read = read != 0
	return &msg, nil
}

func scanMessageRows(rows *sql.Rows) (*Message, error) {
	return scanMessage(rows)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
