// ABOUTME: Store interface and data types for roam-gateway persistence.
// ABOUTME: Defines Message, Reaction, Feedback structs and the Store interface.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Message represents a direct message between two users. Messages are created
// with Read=false and flipped by a read receipt; the gateway never deletes
// them (retention is the main application's concern).
type Message struct {
	ID         string
	FromUserID string
	ToUserID   string
	Body       string
	Read       bool
	CreatedAt  time.Time
}

// Reaction is an emoji attached to a message. A user has at most one reaction
// per message; a new one replaces their previous one.
type Reaction struct {
	MessageID  string
	FromUserID string
	Emoji      string
	UpdatedAt  time.Time
}

// Feedback records a thumbs-up/down on an assistant reply, for later review.
type Feedback struct {
	ID           string
	ConnectionID string
	MessageID    string
	IsHelpful    bool
	Response     string
	Comment      string
	CreatedAt    time.Time
}

// Store defines the interface for message, reaction, and feedback persistence
type Store interface {
	// Messages
	CreateMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	GetConversation(ctx context.Context, userA, userB string, limit int) ([]*Message, error)
	// MarkConversationRead flips read=false to true on every message from
	// fromUserID to toUserID and returns the number of rows changed.
	// Zero matches is not an error.
	MarkConversationRead(ctx context.Context, fromUserID, toUserID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	// Reactions
	UpsertReaction(ctx context.Context, reaction *Reaction) error
	GetReactions(ctx context.Context, messageID string) ([]*Reaction, error)

	// Assistant feedback
	SaveFeedback(ctx context.Context, fb *Feedback) error

	Close() error
}
