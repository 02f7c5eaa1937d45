// ABOUTME: Deterministic rule stages of the pipeline: basic intents, the
// ABOUTME: tour-detail pattern, and the tour-search heuristic.

package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// basicIntentGroup is an ordered group of patterns for one basic intent.
// The first group with any matching pattern wins.
type basicIntentGroup struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// Patterns run against the trimmed, lowercased utterance.
var basicIntents = []basicIntentGroup{
	{
		intent: IntentGreeting,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(hi|hiya|hey|hello|howdy|yo)\b`),
			regexp.MustCompile(`^good (morning|afternoon|evening)\b`),
			regexp.MustCompile(`^greetings\b`),
		},
	},
	{
		intent: IntentFarewell,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^(bye|goodbye|farewell)\b`),
			regexp.MustCompile(`^see (you|ya)\b`),
			regexp.MustCompile(`^good night\b`),
			regexp.MustCompile(`\bgotta go\b`),
		},
	},
	{
		intent: IntentThanks,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bthank(s| you)?\b`),
			regexp.MustCompile(`\b(thx|ty|cheers)\b`),
			regexp.MustCompile(`\bappreciate (it|that)\b`),
		},
	},
	{
		intent: IntentHelp,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^help\b`),
			regexp.MustCompile(`\bwhat can you do\b`),
			regexp.MustCompile(`\bhow (do|does) (you|this) work\b`),
			regexp.MustCompile(`\bwhat (are you|is this)( for)?\b`),
		},
	},
}

// matchBasicIntent tests the utterance against the ordered basic-intent
// groups. No entity extraction happens for these.
func matchBasicIntent(normalized string) (Intent, bool) {
	for _, group := range basicIntents {
		for _, p := range group.patterns {
			if p.MatchString(normalized) {
				return group.intent, true
			}
		}
	}
	return IntentUnknown, false
}

// tourDetailPatterns recognize an explicit "show me tour #2" style request.
// Checked before the general search heuristic because it is more specific.
var tourDetailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:show|open)\s+(?:me\s+)?(?:tour|option|number|no\.?|#)\s*(\d{1,2})\b`),
	regexp.MustCompile(`\bdetails?\s+(?:about|on|of|for)?\s*(?:tour|option|number|no\.?|#)?\s*(\d{1,2})\b`),
	regexp.MustCompile(`\btell me (?:more )?about\s+(?:tour|option|number)?\s*#?(\d{1,2})\b`),
	regexp.MustCompile(`(?:^|\s)#(\d{1,2})\b`),
}

// matchTourDetail returns the referenced result number, if the utterance is
// an explicit detail request.
func matchTourDetail(normalized string) (int, bool) {
	for _, p := range tourDetailPatterns {
		if m := p.FindStringSubmatch(normalized); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

// Tour-search signals: any one of these classifies the utterance as a search.
var (
	searchActionVerbs = []string{
		"find", "search", "show", "look", "looking", "book", "recommend",
		"suggest", "want", "plan", "planning", "visit", "visiting", "explore",
		"discover", "need",
	}

	searchQuestionPattern = regexp.MustCompile(`^(what|where|which|how)\b.*\b(do|see|go|visit|tour|experience)\b`)
)

// isTourSearch applies the stage-5 heuristic: tour keywords, action verbs,
// question shapes, or any already-extracted entity.
func isTourSearch(normalized string, ents Entities) bool {
	for _, kw := range tourTypeKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	for _, verb := range searchActionVerbs {
		if containsWord(normalized, verb) {
			return true
		}
	}
	if searchQuestionPattern.MatchString(normalized) {
		return true
	}
	return !ents.Empty()
}

// containsWord reports whether w appears as a whole word in s.
func containsWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		startOK := start == 0 || !isWordByte(s[start-1])
		endOK := end == len(s) || !isWordByte(s[end])
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
