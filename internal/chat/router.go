// ABOUTME: Presence & direct-message router between live connections
// ABOUTME: Persists first, then delivers; recipient offline means persist-only

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roamly/roam-gateway/internal/auth"
	"github.com/roamly/roam-gateway/internal/directory"
	"github.com/roamly/roam-gateway/internal/store"
)

// Events emitted on chat connections.
const (
	EventUserOnline   = "userOnline"
	EventUserOffline  = "userOffline"
	EventPresenceList = "presence:list"
	EventMessageNew   = "message:new"
	EventNotification = "notification:new"
	EventReadConfirm  = "message:read:confirm"
	EventTyping       = "typing"
	EventReaction     = "message:reaction"
)

// Notifier delivers events to live connections. Notify targets one
// connection; Broadcast reaches every connection on the hub. Both are
// best-effort: a slow or gone consumer drops the event.
type Notifier interface {
	Notify(connID, event string, payload any)
	Broadcast(event string, payload any)
}

// MessageStore is what the router needs from persistence.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *store.Message) error
	GetConversation(ctx context.Context, userA, userB string, limit int) ([]*store.Message, error)
	MarkConversationRead(ctx context.Context, fromUserID, toUserID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	UpsertReaction(ctx context.Context, reaction *store.Reaction) error
}

// MessagePayload is the message:new event body, one per persisted message.
type MessagePayload struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Text       string    `json:"text"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PresencePayload lists who is online, sent to a connection right after it
// authenticates.
type PresencePayload struct {
	Users []string `json:"users"`
}

// UserPayload names the subject of a presence broadcast.
type UserPayload struct {
	UserID string `json:"userId"`
}

// ReadConfirmPayload names who read the conversation.
type ReadConfirmPayload struct {
	ReaderID string `json:"readerId"`
}

// TypingPayload names who is typing.
type TypingPayload struct {
	FromUserID string `json:"fromUserId"`
}

// NotificationPayload announces that something new arrived for the recipient.
type NotificationPayload struct {
	Type       string `json:"type"`
	FromUserID string `json:"fromUserId"`
	MessageID  string `json:"messageId"`
}

// ReactionPayload relays one reaction to the other party.
type ReactionPayload struct {
	MessageID  string `json:"messageId"`
	FromUserID string `json:"fromUserId"`
	Emoji      string `json:"emoji"`
}

// Router authenticates connections, tracks presence through the directory,
// and moves messages between live connections with the store as the source
// of truth.
type Router struct {
	directory *directory.Directory
	store     MessageStore
	verifier  auth.TokenVerifier
	notifier  Notifier
	logger    *slog.Logger
}

// New creates a Router.
func New(dir *directory.Directory, st MessageStore, verifier auth.TokenVerifier, notifier Notifier, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		directory: dir,
		store:     st,
		verifier:  verifier,
		notifier:  notifier,
		logger:    logger.With("component", "chat"),
	}
}

// HandleConnect authenticates the connection, registers it, and announces
// the user. A bad credential is fatal to the connection and never retried
// here; the caller closes the socket on error.
func (r *Router) HandleConnect(ctx context.Context, token, connID string) (string, error) {
	userID, err := r.verifier.Verify(token)
	if err != nil {
		r.logger.Warn("connection rejected",
			"connection_id", connID,
			"error", err)
		return "", fmt.Errorf("authenticating connection: %w", err)
	}

	r.directory.Register(userID, connID)
	r.notifier.Broadcast(EventUserOnline, UserPayload{UserID: userID})
	r.notifier.Notify(connID, EventPresenceList, PresencePayload{Users: r.directory.OnlineUsers()})
	return userID, nil
}

// HandleDisconnect unregisters the connection and announces the user
// offline. Safe to call for connections that never authenticated.
func (r *Router) HandleDisconnect(connID string) {
	userID, ok := r.directory.Unregister(connID)
	if !ok {
		return
	}
	r.notifier.Broadcast(EventUserOffline, UserPayload{UserID: userID})
}

// Send persists the message and delivers it to the recipient's live
// connection if there is one, always echoing back to the sender so the
// sender's newest session sees its own message. A persistence failure is
// logged and swallowed; delivery still proceeds.
func (r *Router) Send(ctx context.Context, fromUserID, toUserID, text string) {
	msg := &store.Message{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Body:       text,
		Read:       false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.store.CreateMessage(ctx, msg); err != nil {
		// Weak guarantee, kept deliberately: the sender is not told the
		// message may not have been stored.
		r.logger.Error("failed to persist message",
			"from", fromUserID,
			"to", toUserID,
			"error", err)
	}

	payload := MessagePayload{
		ID:         msg.ID,
		FromUserID: msg.FromUserID,
		ToUserID:   msg.ToUserID,
		Text:       msg.Body,
		Read:       msg.Read,
		CreatedAt:  msg.CreatedAt,
	}

	if connID, ok := r.directory.Resolve(toUserID); ok {
		r.notifier.Notify(connID, EventMessageNew, payload)
		r.notifier.Notify(connID, EventNotification, NotificationPayload{
			Type:       "message",
			FromUserID: fromUserID,
			MessageID:  msg.ID,
		})
	}
	if connID, ok := r.directory.Resolve(fromUserID); ok {
		r.notifier.Notify(connID, EventMessageNew, payload)
	}
}

// MarkRead flips every unread message from fromUserID to toUserID and tells
// the original sender who read them. Zero matching messages is a no-op, not
// an error, and still confirms.
func (r *Router) MarkRead(ctx context.Context, fromUserID, toUserID string) {
	n, err := r.store.MarkConversationRead(ctx, fromUserID, toUserID)
	if err != nil {
		r.logger.Error("failed to mark conversation read",
			"from", fromUserID,
			"to", toUserID,
			"error", err)
		return
	}
	r.logger.Debug("conversation marked read",
		"from", fromUserID,
		"to", toUserID,
		"messages", n)

	if connID, ok := r.directory.Resolve(fromUserID); ok {
		r.notifier.Notify(connID, EventReadConfirm, ReadConfirmPayload{ReaderID: toUserID})
	}
}

// Typing relays a typing indicator to the recipient if online. Nothing is
// persisted and an offline recipient is not an error.
func (r *Router) Typing(fromUserID, toUserID string) {
	if connID, ok := r.directory.Resolve(toUserID); ok {
		r.notifier.Notify(connID, EventTyping, TypingPayload{FromUserID: fromUserID})
	}
}

// React attaches or replaces the caller's reaction on a message and relays
// it to the other party if online. Persistence failures are logged and the
// relay still happens.
func (r *Router) React(ctx context.Context, fromUserID, messageID, emoji, toUserID string) {
	err := r.store.UpsertReaction(ctx, &store.Reaction{
		MessageID:  messageID,
		FromUserID: fromUserID,
		Emoji:      emoji,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		r.logger.Error("failed to persist reaction",
			"message_id", messageID,
			"from", fromUserID,
			"error", err)
	}
	if connID, ok := r.directory.Resolve(toUserID); ok {
		r.notifier.Notify(connID, EventReaction, ReactionPayload{
			MessageID:  messageID,
			FromUserID: fromUserID,
			Emoji:      emoji,
		})
	}
}

// History returns the conversation between two users, oldest first.
func (r *Router) History(ctx context.Context, userA, userB string, limit int) ([]*store.Message, error) {
	return r.store.GetConversation(ctx, userA, userB, limit)
}

// UnreadCount returns how many messages addressed to userID are unread.
func (r *Router) UnreadCount(ctx context.Context, userID string) (int, error) {
	return r.store.CountUnread(ctx, userID)
}
