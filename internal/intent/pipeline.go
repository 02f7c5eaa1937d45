// ABOUTME: Layered-confidence intent cascade: rules first, training-phrase
// ABOUTME: similarity second, generative model last.

package intent

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// phraseSimilarityThreshold is the minimum score for a training-phrase match
// to rescue an unclassified utterance. Fixed constant, no calibration.
const phraseSimilarityThreshold = 0.7

// PhraseMatch is one hit from the training-phrase index.
type PhraseMatch struct {
	Phrase string
	City   string
	Score  float32
}

// PhraseSearcher finds previously-indexed training phrases similar to an
// utterance. Embedding of the query happens behind this interface.
type PhraseSearcher interface {
	SearchTrainingPhrases(ctx context.Context, utterance string, limit int) ([]PhraseMatch, error)
}

// Responder produces a generated reply for input the rules could not place.
// Implementations must not fail: on any internal error they return a fixed
// apology string instead.
type Responder interface {
	Generate(ctx context.Context, prompt string) string
}

// Pipeline resolves free-text utterances to intents. Stages run cheapest
// first: exact rules are brittle but free, similarity search catches
// paraphrase, and the generative model catches everything else at the
// highest latency and cost.
type Pipeline struct {
	phrases         PhraseSearcher
	responder       Responder
	searchTimeout   time.Duration
	generateTimeout time.Duration
	logger          *slog.Logger
}

// Config carries the pipeline's collaborator ports and timeouts.
type Config struct {
	Phrases         PhraseSearcher
	Responder       Responder
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
	Logger          *slog.Logger
}

// NewPipeline creates a Pipeline. Phrases and Responder may be nil, in which
// case the corresponding fallback stage is skipped.
func NewPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout == 0 {
		searchTimeout = 10 * time.Second
	}
	generateTimeout := cfg.GenerateTimeout
	if generateTimeout == 0 {
		generateTimeout = 10 * time.Second
	}
	return &Pipeline{
		phrases:         cfg.Phrases,
		responder:       cfg.Responder,
		searchTimeout:   searchTimeout,
		generateTimeout: generateTimeout,
		logger:          logger.With("component", "intent"),
	}
}

// Resolve classifies the utterance. First matching stage wins:
//
//  1. basic intent rules (greeting/farewell/thanks/help)
//  2. entity extraction (always runs)
//  3. domain gate: a non-tour activity short-circuits to unknown
//  4. explicit tour-detail pattern
//  5. tour-search heuristic
//  6. training-phrase similarity (score > 0.7 adopts the phrase's city)
//  7. generative fallback
//
// The domain gate (3) returns unknown WITHOUT reaching stages 6-7, so
// off-domain small talk never sees the generative model. That narrowing is
// deliberate behavior carried over from the production dispatcher; widening
// it is a product decision, not a bug fix.
func (p *Pipeline) Resolve(ctx context.Context, utterance string) Result {
	normalized := strings.ToLower(strings.TrimSpace(utterance))

	// Stage 1: basic intents, no entities.
	if in, ok := matchBasicIntent(normalized); ok {
		return Result{Intent: in}
	}

	// Stage 2: entity extraction always runs.
	ents := ExtractEntities(utterance)

	// Stage 3: domain gate.
	if ents.Activity != "" && !isTourActivity(ents.Activity) {
		p.logger.Debug("domain gate rejected activity", "activity", ents.Activity)
		return Result{Intent: IntentUnknown}
	}

	// Stage 4: explicit detail request beats the general search heuristic.
	if n, ok := matchTourDetail(normalized); ok {
		return Result{Intent: IntentTourDetail, Detail: &DetailSelection{Number: n}}
	}

	// Stage 5: tour-search heuristic.
	if isTourSearch(normalized, ents) {
		return Result{Intent: IntentTourSearch, Search: &SearchQuery{Entities: ents}}
	}

	// Stage 6: training-phrase similarity.
	if res, ok := p.phraseFallback(ctx, utterance, ents); ok {
		return res
	}

	// Stage 7: generative fallback.
	return p.generativeFallback(ctx, utterance)
}

// phraseFallback embeds the utterance and looks for the nearest indexed
// training phrase. Errors and timeouts fall through to the next stage.
func (p *Pipeline) phraseFallback(ctx context.Context, utterance string, ents Entities) (Result, bool) {
	if p.phrases == nil {
		return Result{}, false
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.searchTimeout)
	defer cancel()

	matches, err := p.phrases.SearchTrainingPhrases(searchCtx, utterance, 1)
	if err != nil {
		p.logger.Warn("training-phrase search failed", "error", err)
		return Result{}, false
	}
	if len(matches) == 0 || matches[0].Score <= phraseSimilarityThreshold {
		return Result{}, false
	}

	top := matches[0]
	p.logger.Debug("training-phrase fallback matched",
		"phrase", top.Phrase,
		"city", top.City,
		"score", top.Score,
	)
	query := ents
	if query.City == "" {
		query.City = top.City
	}
	return Result{
		Intent: IntentTourSearch,
		Search: &SearchQuery{
			Entities:          query,
			ViaTrainingPhrase: true,
			MatchedPhrase:     top.Phrase,
			MatchedCity:       top.City,
		},
	}, true
}

// generativeFallback asks the generative model for a reply. The responder
// contract guarantees a usable string even on internal failure.
func (p *Pipeline) generativeFallback(ctx context.Context, utterance string) Result {
	if p.responder == nil {
		return Result{Intent: IntentUnknown}
	}

	genCtx, cancel := context.WithTimeout(ctx, p.generateTimeout)
	defer cancel()

	text := p.responder.Generate(genCtx, utterance)
	if text == "" {
		return Result{Intent: IntentUnknown}
	}
	return Result{Intent: IntentUnknown, Fallback: &GeneratedReply{Text: text}}
}

// isTourActivity reports whether the extracted activity belongs to the tour
// domain. The gate keeps the assistant from engaging with off-domain errands
// ("do my laundry") while letting catalogue vocabulary through.
func isTourActivity(activity string) bool {
	for _, kw := range tourTypeKeywords {
		if activity == kw || strings.Contains(activity, kw) || strings.Contains(kw, activity) {
			return true
		}
	}
	// Verb-pass captures like "hiking"/"sightseeing" arrive with suffixes.
	trimmed := strings.TrimSuffix(activity, "ing")
	for _, kw := range tourTypeKeywords {
		if strings.HasPrefix(kw, trimmed) && trimmed != "" {
			return true
		}
	}
	return false
}
