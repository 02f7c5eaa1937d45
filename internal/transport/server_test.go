// ABOUTME: End-to-end websocket tests against a wired transport server
// ABOUTME: Real sockets, real router, SQLite store in a temp dir

package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamly/roam-gateway/internal/auth"
	"github.com/roamly/roam-gateway/internal/bot"
	"github.com/roamly/roam-gateway/internal/chat"
	"github.com/roamly/roam-gateway/internal/dedupe"
	"github.com/roamly/roam-gateway/internal/directory"
	"github.com/roamly/roam-gateway/internal/intent"
	"github.com/roamly/roam-gateway/internal/session"
	"github.com/roamly/roam-gateway/internal/store"
	"github.com/roamly/roam-gateway/internal/vector"
)

type echoResolver struct{}

func (echoResolver) Resolve(ctx context.Context, utterance string) intent.Result {
	return intent.Result{Intent: intent.IntentGreeting}
}

type emptySearcher struct{}

func (emptySearcher) SearchTours(ctx context.Context, query string, limit int, minScore float32) ([]vector.TourMatch, error) {
	return nil, nil
}

type testEnv struct {
	srv      *httptest.Server
	verifier *auth.JWTVerifier
	store    *store.SQLiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	verifier, err := auth.NewJWTVerifier([]byte("test-secret"))
	require.NoError(t, err)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "gateway.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := NewHub(nil)
	dir := directory.New(nil)
	router := chat.New(dir, st, verifier, hub, nil)

	sessions := session.NewStore()
	botGW := bot.New(bot.Config{
		Sessions:      sessions,
		Resolver:      echoResolver{},
		Tours:         emptySearcher{},
		Feedback:      st,
		Notifier:      hub,
		GreetingDelay: -1,
	})

	guard := dedupe.New(time.Minute, 100)
	t.Cleanup(guard.Close)

	server := NewServer(Config{
		Hub:      hub,
		Router:   router,
		Bot:      botGW,
		Verifier: verifier,
		Guard:    guard,
	})

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, verifier: verifier, store: st}
}

func (e *testEnv) dial(t *testing.T, ctx context.Context, path, userID string) *websocket.Conn {
	t.Helper()
	token, err := e.verifier.Generate(userID, time.Hour)
	require.NoError(t, err)

	c, _, err := websocket.Dial(ctx, e.srv.URL+path+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func send(t *testing.T, ctx context.Context, c *websocket.Conn, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(outEnvelope{Event: event, Payload: payload})
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

// waitFor reads frames until one carries the wanted event, discarding
// presence chatter along the way.
func waitFor(t *testing.T, ctx context.Context, c *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err, "waiting for %q", event)
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Event == event {
			return env.Payload
		}
	}
}

func TestChatSendDeliversAndEchoes(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := env.dial(t, ctx, "/ws", "alice")
	bob := env.dial(t, ctx, "/ws", "bob")

	waitFor(t, ctx, alice, "presence:list")
	waitFor(t, ctx, bob, "presence:list")

	send(t, ctx, alice, "message", map[string]string{"to": "bob", "text": "hi"})

	var got chat.MessagePayload
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, bob, "message:new"), &got))
	assert.Equal(t, "alice", got.FromUserID)
	assert.Equal(t, "hi", got.Text)
	assert.False(t, got.Read)

	var echo chat.MessagePayload
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, alice, "message:new"), &echo))
	assert.Equal(t, got.ID, echo.ID)

	send(t, ctx, bob, "message:read", map[string]string{"fromUserId": "alice", "toUserId": "bob"})

	var confirm chat.ReadConfirmPayload
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, alice, "message:read:confirm"), &confirm))
	assert.Equal(t, "bob", confirm.ReaderID)
}

func TestChatRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, env.srv.URL+"/ws?token=garbage", nil)
	require.NoError(t, err, "handshake succeeds; the close comes after auth")
	defer c.CloseNow()

	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestChatReplayedClientMessageIDSuppressed(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := env.dial(t, ctx, "/ws", "alice")
	waitFor(t, ctx, alice, "presence:list")

	payload := map[string]string{"to": "bob", "text": "hi", "clientMsgId": "cm-1"}
	send(t, ctx, alice, "message", payload)
	send(t, ctx, alice, "message", payload)

	// The echo for the first send proves both frames were processed in
	// order before we inspect the store.
	waitFor(t, ctx, alice, "message:new")

	send(t, ctx, alice, "message", map[string]string{"to": "bob", "text": "done", "clientMsgId": "cm-2"})
	waitFor(t, ctx, alice, "message:new")

	msgs, err := env.store.GetConversation(ctx, "alice", "bob", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2, "replayed cm-1 must not be persisted twice")
}

func TestChatHistoryAndUnread(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := env.dial(t, ctx, "/ws", "alice")
	waitFor(t, ctx, alice, "presence:list")

	send(t, ctx, alice, "message", map[string]string{"to": "bob", "text": "one"})
	send(t, ctx, alice, "message", map[string]string{"to": "bob", "text": "two"})
	waitFor(t, ctx, alice, "message:new")
	waitFor(t, ctx, alice, "message:new")

	// Bob connects later and catches up from the store.
	bob := env.dial(t, ctx, "/ws", "bob")
	waitFor(t, ctx, bob, "presence:list")

	send(t, ctx, bob, "unread", nil)
	var unread unreadPayload
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, bob, "unread:count"), &unread))
	assert.Equal(t, 2, unread.Count)

	send(t, ctx, bob, "history", map[string]any{"with": "alice"})
	var hist historyPayload
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, bob, "history"), &hist))
	require.Len(t, hist.Messages, 2)
	assert.Equal(t, "one", hist.Messages[0].Text)
	assert.Equal(t, "two", hist.Messages[1].Text)
}

func TestBotGreetingAndTurn(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := env.dial(t, ctx, "/ws/bot", "alice")

	// Connect greeting arrives unprompted.
	var greeting bot.Response
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, c, "bot:response"), &greeting))
	assert.NotEmpty(t, greeting.Text)

	send(t, ctx, c, "bot:message", map[string]string{"message": "hello"})

	var reply bot.Response
	require.NoError(t, json.Unmarshal(waitFor(t, ctx, c, "bot:response"), &reply))
	assert.NotEmpty(t, reply.Text)
}

func TestBotRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, env.srv.URL+"/ws/bot?token=garbage", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
