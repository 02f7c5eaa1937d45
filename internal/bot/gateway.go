// ABOUTME: Bot Gateway orchestrates one assistant turn end to end
// ABOUTME: Session load, intent resolution, reply dispatch, session update, emit

package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roamly/roam-gateway/internal/intent"
	"github.com/roamly/roam-gateway/internal/session"
	"github.com/roamly/roam-gateway/internal/store"
	"github.com/roamly/roam-gateway/internal/vector"
)

// Events emitted on the assistant connection.
const (
	EventResponse    = "bot:response"
	EventTyping      = "bot:typing"
	EventFeedbackAck = "bot:feedbackReceived"
)

const (
	defaultGreetingDelay = 1500 * time.Millisecond
	searchLimit          = 5
	searchMinScore       = 0.6
)

// Resolver classifies one utterance. Satisfied by intent.Pipeline.
type Resolver interface {
	Resolve(ctx context.Context, utterance string) intent.Result
}

// TourSearcher finds tours semantically similar to a free-text query.
// Satisfied by vector.Index.
type TourSearcher interface {
	SearchTours(ctx context.Context, query string, limit int, minScore float32) ([]vector.TourMatch, error)
}

// FeedbackStore records user feedback on assistant replies.
type FeedbackStore interface {
	SaveFeedback(ctx context.Context, fb *store.Feedback) error
}

// Notifier delivers an event to one live connection. The gateway never learns
// what transport is behind it.
type Notifier interface {
	Notify(connID, event string, payload any)
}

// Response is the bot:response payload.
type Response struct {
	Text     string        `json:"text"`
	Results  []TourSummary `json:"results,omitempty"`
	FollowUp bool          `json:"followUp,omitempty"`
}

// TourSummary is one entry of a search reply, mirrored into the payload so
// clients can render cards without parsing the text.
type TourSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	City     string `json:"city"`
	Price    string `json:"price,omitempty"`
	Duration string `json:"duration,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// FeedbackAck is the bot:feedbackReceived payload.
type FeedbackAck struct {
	Success bool `json:"success"`
}

// FeedbackInput is what the client sends on a bot:feedback event.
type FeedbackInput struct {
	IsHelpful bool   `json:"isHelpful"`
	MessageID string `json:"messageId"`
	Response  string `json:"response"`
	Comment   string `json:"text,omitempty"`
}

// Gateway runs assistant conversations. One instance serves all connections;
// per-connection dialogue state lives in the session store keyed by
// connection ID.
type Gateway struct {
	sessions *session.Store
	resolver Resolver
	tours    TourSearcher
	feedback FeedbackStore
	notifier Notifier
	logger   *slog.Logger

	greetingDelay time.Duration
}

// Config carries the gateway's collaborators.
type Config struct {
	Sessions *session.Store
	Resolver Resolver
	Tours    TourSearcher
	Feedback FeedbackStore
	Notifier Notifier
	Logger   *slog.Logger

	// GreetingDelay overrides the simulated-typing pause before the
	// connect greeting. Zero means the default; negative disables it.
	GreetingDelay time.Duration
}

// New creates a bot Gateway.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.GreetingDelay
	if delay == 0 {
		delay = defaultGreetingDelay
	}
	return &Gateway{
		sessions:      cfg.Sessions,
		resolver:      cfg.Resolver,
		tours:         cfg.Tours,
		feedback:      cfg.Feedback,
		notifier:      cfg.Notifier,
		logger:        logger.With("component", "bot"),
		greetingDelay: delay,
	}
}

// HandleConnect resets any session left over from a reused connection ID and
// greets the user after a short simulated-typing pause.
func (g *Gateway) HandleConnect(ctx context.Context, connID string) {
	g.sessions.Clear(connID)
	g.notifier.Notify(connID, EventTyping, true)
	defer g.notifier.Notify(connID, EventTyping, false)

	if g.greetingDelay > 0 {
		select {
		case <-time.After(g.greetingDelay):
		case <-ctx.Done():
			return
		}
	}
	g.notifier.Notify(connID, EventResponse, Response{Text: pick(greetingReplies)})
}

// HandleDisconnect drops the connection's dialogue state.
func (g *Gateway) HandleDisconnect(connID string) {
	g.sessions.Clear(connID)
}

// HandleMessage runs one turn. Failures inside a turn never escape: panics
// are converted to a fixed error reply with the session untouched.
func (g *Gateway) HandleMessage(ctx context.Context, connID, text string) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("assistant turn panicked",
				"connection_id", connID,
				"panic", r)
			g.notifier.Notify(connID, EventResponse, Response{Text: errorReply})
		}
	}()

	g.notifier.Notify(connID, EventTyping, true)
	defer g.notifier.Notify(connID, EventTyping, false)

	trimmed := trimInput(text)
	if trimmed == "" {
		g.notifier.Notify(connID, EventResponse, Response{Text: emptyInputReply})
		return
	}

	sess := g.sessions.Get(connID)

	// A bare number after a search selects from the last result list
	// without touching the pipeline.
	if n, ok := parseSelection(trimmed); ok &&
		sess.LastIntent == intent.IntentTourSearch.String() && len(sess.LastResults) > 0 {
		g.notifier.Notify(connID, EventResponse, g.detailReply(sess.LastResults, n))
		return
	}

	res := g.resolver.Resolve(ctx, trimmed)
	switch res.Intent {
	case intent.IntentGreeting:
		g.notifier.Notify(connID, EventResponse, Response{Text: pick(greetingReplies)})
	case intent.IntentFarewell:
		g.notifier.Notify(connID, EventResponse, Response{Text: pick(farewellReplies)})
	case intent.IntentThanks:
		g.notifier.Notify(connID, EventResponse, Response{Text: pick(thanksReplies)})
	case intent.IntentHelp:
		g.notifier.Notify(connID, EventResponse, Response{Text: pick(helpReplies)})
	case intent.IntentTourDetail:
		g.handleDetail(connID, sess, res.Detail)
	case intent.IntentTourSearch:
		g.handleSearch(ctx, connID, sess, trimmed, res.Search)
	default:
		if res.Fallback != nil && res.Fallback.Text != "" {
			g.notifier.Notify(connID, EventResponse, Response{Text: res.Fallback.Text})
			return
		}
		g.notifier.Notify(connID, EventResponse, Response{Text: deflectionReply})
	}
}

func (g *Gateway) handleDetail(connID string, sess session.Session, sel *intent.DetailSelection) {
	if sel == nil || len(sess.LastResults) == 0 {
		g.notifier.Notify(connID, EventResponse, Response{Text: noListReply})
		return
	}
	g.notifier.Notify(connID, EventResponse, g.detailReply(sess.LastResults, sel.Number))
}

// detailReply resolves a 1-indexed selection against the given result list.
func (g *Gateway) detailReply(results []session.TourResult, n int) Response {
	if n < 1 || n > len(results) {
		return Response{Text: invalidSelectionReply(len(results))}
	}
	t := results[n-1]
	return Response{
		Text:    formatDetailReply(t),
		Results: toSummaries([]session.TourResult{t}),
	}
}

func (g *Gateway) handleSearch(ctx context.Context, connID string, sess session.Session, utterance string, q *intent.SearchQuery) {
	var ents intent.Entities
	viaPhrase := false
	if q != nil {
		ents = q.Entities
		viaPhrase = q.ViaTrainingPhrase
	}

	// City carries over from earlier in the dialogue when this utterance
	// doesn't name one.
	city := ents.City
	if city == "" {
		city = sess.MentionedCity
	}

	matches, err := g.tours.SearchTours(ctx, utterance, searchLimit, searchMinScore)
	if err != nil {
		g.logger.Error("tour search failed",
			"connection_id", connID,
			"error", err)
		g.notifier.Notify(connID, EventResponse, Response{Text: errorReply})
		return
	}

	results := vector.ToSessionResults(matches)
	g.sessions.Set(connID, session.Session{
		LastIntent:    intent.IntentTourSearch.String(),
		MentionedCity: city,
		LastResults:   results,
	})

	if len(results) == 0 {
		g.notifier.Notify(connID, EventResponse, Response{Text: noResultsReply(city)})
		return
	}
	g.notifier.Notify(connID, EventResponse, Response{
		Text:     formatSearchReply(results, city, viaPhrase),
		Results:  toSummaries(results),
		FollowUp: true,
	})
}

// HandleFeedback records feedback about a reply and acknowledges the outcome.
// A storage failure is reported in the ack, never raised to the turn.
func (g *Gateway) HandleFeedback(ctx context.Context, connID string, in FeedbackInput) {
	fb := &store.Feedback{
		ID:           uuid.NewString(),
		ConnectionID: connID,
		MessageID:    in.MessageID,
		IsHelpful:    in.IsHelpful,
		Response:     in.Response,
		Comment:      in.Comment,
		CreatedAt:    time.Now().UTC(),
	}
	err := g.feedback.SaveFeedback(ctx, fb)
	if err != nil {
		g.logger.Error("failed to save feedback",
			"connection_id", connID,
			"error", err)
	} else {
		g.notifier.Notify(connID, EventResponse, Response{Text: feedbackThanks})
	}
	g.notifier.Notify(connID, EventFeedbackAck, FeedbackAck{Success: err == nil})
}

func trimInput(s string) string {
	return strings.TrimSpace(s)
}

// parseSelection accepts only bare digit strings, so "2" selects a tour but
// "+2" or "2 please" fall through to the pipeline.
func parseSelection(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toSummaries(results []session.TourResult) []TourSummary {
	out := make([]TourSummary, 0, len(results))
	for _, t := range results {
		out = append(out, TourSummary{
			ID:       t.ID,
			Title:    t.Title,
			City:     t.City,
			Price:    t.Price,
			Duration: t.Duration,
			Summary:  t.Summary,
		})
	}
	return out
}
