// ABOUTME: Entity extraction for tour queries: city, activity, number, date
// ABOUTME: hint, and price range. Pure function of the input text.

package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Closed vocabularies. These mirror the catalogue the main application
// scrapes; cities outside the list are still caught by the capitalized-token
// heuristic.
var (
	knownCities = []string{
		"amsterdam", "athens", "bangkok", "barcelona", "berlin", "budapest",
		"cairo", "dublin", "dubrovnik", "edinburgh", "florence", "istanbul",
		"kyoto", "lisbon", "london", "madrid", "marrakech", "munich",
		"naples", "new york", "paris", "porto", "prague", "rome", "seville",
		"sydney", "tokyo", "venice", "vienna", "zagreb",
	}

	tourTypeKeywords = []string{
		"tour", "tours", "sightseeing", "excursion", "day trip", "walking",
		"hiking", "museum", "gallery", "food", "wine", "tasting", "history",
		"historical", "culture", "cultural", "boat", "cruise", "bike",
		"cycling", "art", "architecture", "nightlife", "photography",
		"beach", "adventure", "market", "landmark",
	}

	dateKeywords = []string{
		"today", "tonight", "tomorrow", "weekend", "next week",
		"monday", "tuesday", "wednesday", "thursday", "friday",
		"saturday", "sunday",
	}
)

var (
	// Structured pass: a preposition or travel verb followed by a proper noun.
	cityPrepositionPattern = regexp.MustCompile(
		`(?:\b(?:in|to|at|around|near)\s+|\bvisit(?:ing)?\s+)([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`)

	// Structured pass: an action verb and its object word.
	activityVerbPattern = regexp.MustCompile(
		`\b(?:do|try|join|book|take|go)\s+(?:a\s+|an\s+|some\s+)?([a-z]+(?:\s+tour)?)`)

	numberPattern = regexp.MustCompile(`\b(\d{1,3})\b`)

	priceUnderPattern   = regexp.MustCompile(`\b(?:under|below|less than|max(?:imum)?)\s*\$?\s*(\d+)`)
	priceBetweenPattern = regexp.MustCompile(`\bbetween\s*\$?\s*(\d+)\s*and\s*\$?\s*(\d+)`)
)

// ExtractEntities pulls city, activity, number, date hint, and price range
// out of the utterance. Each entity is extracted independently: a structured
// regex pass first, then closed-vocabulary membership, then (for city) the
// longest-capitalized-token heuristic. Deterministic; no side effects.
func ExtractEntities(utterance string) Entities {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	num := firstNumber(normalized)

	return Entities{
		City:       extractCity(utterance, normalized),
		Activity:   extractActivity(normalized),
		Number:     num.value,
		HasNumber:  num.ok,
		DateHint:   extractDateHint(normalized),
		PriceRange: extractPriceRange(normalized),
	}
}

// extractCity runs the three-tier city extraction against the original-case
// utterance (tier 1 and 3 need capitalization) and the normalized form
// (tier 2 vocabulary membership).
func extractCity(original, normalized string) string {
	// (a) preposition/verb pass
	if m := cityPrepositionPattern.FindStringSubmatch(original); m != nil {
		candidate := m[1]
		// Trailing capitalized words that are not part of the name ("in
		// Berlin Tomorrow") are rare enough to accept as-is.
		return candidate
	}

	// (b) known-city vocabulary
	for _, city := range knownCities {
		if strings.Contains(normalized, city) {
			return titleCase(city)
		}
	}

	// (c) heuristic: longest capitalized token, skipping the first word
	// (sentence case) unless it is the only candidate.
	return longestCapitalizedToken(original)
}

func extractActivity(normalized string) string {
	// (a) verb-object pass
	if m := activityVerbPattern.FindStringSubmatch(normalized); m != nil {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" && !isStopword(candidate) {
			return candidate
		}
	}

	// (b) keyword-set membership
	for _, kw := range tourTypeKeywords {
		if strings.Contains(normalized, kw) {
			return kw
		}
	}
	return ""
}

type maybeInt struct {
	value int
	ok    bool
}

func firstNumber(normalized string) maybeInt {
	m := numberPattern.FindStringSubmatch(normalized)
	if m == nil {
		return maybeInt{}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return maybeInt{}
	}
	return maybeInt{value: n, ok: true}
}

func extractDateHint(normalized string) string {
	for _, kw := range dateKeywords {
		if containsWord(normalized, kw) || (strings.Contains(kw, " ") && strings.Contains(normalized, kw)) {
			return kw
		}
	}
	return ""
}

func extractPriceRange(normalized string) string {
	if m := priceBetweenPattern.FindStringSubmatch(normalized); m != nil {
		return "$" + m[1] + "-$" + m[2]
	}
	if m := priceUnderPattern.FindStringSubmatch(normalized); m != nil {
		return "under $" + m[1]
	}
	if containsWord(normalized, "cheap") || containsWord(normalized, "budget") || containsWord(normalized, "affordable") {
		return "budget"
	}
	if containsWord(normalized, "luxury") || containsWord(normalized, "premium") || containsWord(normalized, "expensive") {
		return "premium"
	}
	return ""
}

// longestCapitalizedToken returns the longest token that starts with an
// uppercase letter, ignoring the leading token of the utterance (which is
// capitalized by sentence case, not because it names a place).
func longestCapitalizedToken(original string) string {
	tokens := strings.Fields(original)
	best := ""
	for i, tok := range tokens {
		if i == 0 {
			continue
		}
		trimmed := strings.Trim(tok, ".,!?;:'\"")
		if trimmed == "" {
			continue
		}
		first := trimmed[0]
		if first >= 'A' && first <= 'Z' && len(trimmed) > len(best) {
			best = trimmed
		}
	}
	return best
}

func isStopword(w string) bool {
	switch w {
	case "a", "an", "the", "some", "it", "that", "this", "there":
		return true
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
