// ABOUTME: WebSocket endpoints for the chat router and the assistant
// ABOUTME: Accepts, authenticates, then runs a read loop per connection

package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/roamly/roam-gateway/internal/auth"
	"github.com/roamly/roam-gateway/internal/bot"
	"github.com/roamly/roam-gateway/internal/chat"
	"github.com/roamly/roam-gateway/internal/dedupe"
	"github.com/roamly/roam-gateway/internal/store"
)

const (
	writeTimeout        = 10 * time.Second
	defaultHistoryLimit = 50
)

// Server exposes the chat router on /ws and the assistant on /ws/bot.
type Server struct {
	hub      *Hub
	router   *chat.Router
	bot      *bot.Gateway
	verifier auth.TokenVerifier
	guard    *dedupe.Guard
	logger   *slog.Logger
}

// Config carries the server's collaborators.
type Config struct {
	Hub      *Hub
	Router   *chat.Router
	Bot      *bot.Gateway
	Verifier auth.TokenVerifier
	Guard    *dedupe.Guard
	Logger   *slog.Logger
}

// NewServer creates a transport server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		hub:      cfg.Hub,
		router:   cfg.Router,
		bot:      cfg.Bot,
		verifier: cfg.Verifier,
		guard:    cfg.Guard,
		logger:   logger.With("component", "transport"),
	}
}

// RegisterRoutes attaches the websocket endpoints to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleChat)
	mux.HandleFunc("/ws/bot", s.handleBot)
}

// bearerToken pulls the credential from the handshake: ?token= wins, then
// the Authorization header.
func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	connID := uuid.NewString()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := s.hub.Add(connID)
	defer s.hub.Remove(connID)
	go s.writePump(ctx, c, out)

	userID, err := s.router.HandleConnect(ctx, token, connID)
	if err != nil {
		c.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}
	defer s.router.HandleDisconnect(connID)

	s.chatReadLoop(ctx, c, connID, userID)
	c.Close(websocket.StatusNormalClosure, "")
}

type sendInput struct {
	To          string `json:"to"`
	Text        string `json:"text"`
	ClientMsgID string `json:"clientMsgId,omitempty"`
}

type markReadInput struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

type typingInput struct {
	To string `json:"to"`
}

type reactionInput struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
	To        string `json:"to"`
}

type historyInput struct {
	With  string `json:"with"`
	Limit int    `json:"limit,omitempty"`
}

type historyPayload struct {
	With     string                `json:"with"`
	Messages []chat.MessagePayload `json:"messages"`
}

type unreadPayload struct {
	Count int `json:"count"`
}

func (s *Server) chatReadLoop(ctx context.Context, c *websocket.Conn, connID, userID string) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("discarding malformed frame",
				"connection_id", connID,
				"error", err)
			continue
		}

		switch env.Event {
		case "message":
			var in sendInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				s.logger.Warn("bad message payload", "connection_id", connID, "error", err)
				continue
			}
			if s.guard != nil && s.guard.Seen(userID, in.ClientMsgID) {
				s.logger.Debug("suppressing replayed message",
					"user_id", userID,
					"client_msg_id", in.ClientMsgID)
				continue
			}
			s.router.Send(ctx, userID, in.To, in.Text)
		case "message:read":
			var in markReadInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				continue
			}
			s.router.MarkRead(ctx, in.FromUserID, in.ToUserID)
		case "typing":
			var in typingInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				continue
			}
			s.router.Typing(userID, in.To)
		case "message:reaction":
			var in reactionInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				continue
			}
			s.router.React(ctx, userID, in.MessageID, in.Emoji, in.To)
		case "history":
			var in historyInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				continue
			}
			s.sendHistory(ctx, connID, userID, in)
		case "unread":
			count, err := s.router.UnreadCount(ctx, userID)
			if err != nil {
				s.logger.Error("unread count failed", "user_id", userID, "error", err)
				continue
			}
			s.hub.Notify(connID, "unread:count", unreadPayload{Count: count})
		default:
			s.logger.Warn("unknown event",
				"connection_id", connID,
				"event", env.Event)
		}
	}
}

func (s *Server) sendHistory(ctx context.Context, connID, userID string, in historyInput) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	msgs, err := s.router.History(ctx, userID, in.With, limit)
	if err != nil {
		s.logger.Error("history fetch failed",
			"user_id", userID,
			"with", in.With,
			"error", err)
		return
	}
	payload := historyPayload{With: in.With, Messages: make([]chat.MessagePayload, 0, len(msgs))}
	for _, m := range msgs {
		payload.Messages = append(payload.Messages, toMessagePayload(m))
	}
	s.hub.Notify(connID, "history", payload)
}

func toMessagePayload(m *store.Message) chat.MessagePayload {
	return chat.MessagePayload{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Text:       m.Body,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}

type botMessageInput struct {
	Message string `json:"message"`
}

func (s *Server) handleBot(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if _, err := s.verifier.Verify(token); err != nil {
		s.logger.Warn("assistant connection rejected", "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	connID := uuid.NewString()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := s.hub.Add(connID)
	defer s.hub.Remove(connID)
	go s.writePump(ctx, c, out)

	// The greeting has a deliberate delay; run it off the read loop so the
	// first utterance is not held up behind it.
	go s.bot.HandleConnect(ctx, connID)
	defer s.bot.HandleDisconnect(connID)

	s.botReadLoop(ctx, c, connID)
	c.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) botReadLoop(ctx context.Context, c *websocket.Conn, connID string) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("discarding malformed frame",
				"connection_id", connID,
				"error", err)
			continue
		}

		switch env.Event {
		case "bot:message":
			var in botMessageInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				continue
			}
			s.bot.HandleMessage(ctx, connID, in.Message)
		case "bot:feedback":
			var in bot.FeedbackInput
			if err := json.Unmarshal(env.Payload, &in); err != nil {
				continue
			}
			s.bot.HandleFeedback(ctx, connID, in)
		default:
			s.logger.Warn("unknown event",
				"connection_id", connID,
				"event", env.Event)
		}
	}
}

func (s *Server) writePump(ctx context.Context, c *websocket.Conn, out <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
