// ABOUTME: Intent enum and typed per-intent payloads produced by the pipeline.
// ABOUTME: Closed set of intents so dispatch switches stay exhaustive.

package intent

// Intent is the closed set of things the assistant understands.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentGreeting
	IntentFarewell
	IntentThanks
	IntentHelp
	IntentTourSearch
	IntentTourDetail
)

// String returns the wire name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentFarewell:
		return "farewell"
	case IntentThanks:
		return "thanks"
	case IntentHelp:
		return "help"
	case IntentTourSearch:
		return "tour_search"
	case IntentTourDetail:
		return "tour_detail"
	default:
		return "unknown"
	}
}

// Entities are the pieces of a tour query pulled out of free text. Each field
// is extracted independently; empty means "not mentioned".
type Entities struct {
	City       string
	Activity   string
	Number     int
	HasNumber  bool
	DateHint   string
	PriceRange string
}

// Empty reports whether no entity was extracted at all.
func (e Entities) Empty() bool {
	return e.City == "" && e.Activity == "" && !e.HasNumber && e.DateHint == "" && e.PriceRange == ""
}

// SearchQuery is the payload of a tour_search result.
type SearchQuery struct {
	Entities Entities
	// ViaTrainingPhrase marks a classification rescued by the
	// training-phrase similarity fallback rather than the rule stages.
	ViaTrainingPhrase bool
	// MatchedPhrase and MatchedCity carry the training phrase that rescued
	// the classification, when ViaTrainingPhrase is set.
	MatchedPhrase string
	MatchedCity   string
}

// DetailSelection is the payload of a tour_detail result: the 1-indexed
// position in the previously shown result list.
type DetailSelection struct {
	Number int
}

// GeneratedReply is the payload of an unknown result that passed through the
// generative fallback.
type GeneratedReply struct {
	Text string
}

// Result is the outcome of one pipeline run. Exactly the payload matching
// Intent is non-nil: Search for tour_search, Detail for tour_detail, and
// Fallback for unknown when the generative model produced text. Basic intents
// (greeting, farewell, thanks, help) carry no payload.
type Result struct {
	Intent   Intent
	Search   *SearchQuery
	Detail   *DetailSelection
	Fallback *GeneratedReply
}

// IsLLMFallback reports whether the result text came from the generative model.
func (r Result) IsLLMFallback() bool {
	return r.Fallback != nil
}
