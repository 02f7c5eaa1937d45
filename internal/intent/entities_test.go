// ABOUTME: Tests for entity extraction.
// ABOUTME: Each entity tier (regex, vocabulary, heuristic) is covered.

package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCityFromPreposition(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Find historical tours in Berlin", "Berlin"},
		{"I want to go to Paris", "Paris"},
		{"anything near Lisbon?", "Lisbon"},
		{"visiting New York next month", "New York"},
		{"tours around Buenos Aires", "Buenos Aires"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.input).City)
		})
	}
}

func TestExtractCityFromVocabulary(t *testing.T) {
	// No preposition and no capitalization: only the closed vocabulary
	// can catch it.
	ents := ExtractEntities("any good food tours berlin")
	assert.Equal(t, "Berlin", ents.City)
}

func TestExtractCityHeuristicLongestCapitalizedToken(t *testing.T) {
	// Not in the vocabulary and no preposition: fall back to the longest
	// capitalized token past the first word.
	ents := ExtractEntities("Show me what Llanfairpwllgwyngyll offers")
	assert.Equal(t, "Llanfairpwllgwyngyll", ents.City)
}

func TestExtractCityAbsent(t *testing.T) {
	ents := ExtractEntities("find me a nice walking tour")
	assert.Empty(t, ents.City)
}

func TestExtractActivity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"I want to do hiking this weekend", "hiking"},
		{"find wine tasting experiences", "wine"},
		{"historical walking tours please", "tour"},
		{"something with museums", "museum"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.input).Activity)
		})
	}
}

func TestExtractNumber(t *testing.T) {
	ents := ExtractEntities("show me 5 options")
	assert.True(t, ents.HasNumber)
	assert.Equal(t, 5, ents.Number)

	ents = ExtractEntities("no numbers here")
	assert.False(t, ents.HasNumber)
}

func TestExtractDateHint(t *testing.T) {
	assert.Equal(t, "tomorrow", ExtractEntities("walking tour tomorrow?").DateHint)
	assert.Equal(t, "weekend", ExtractEntities("what about this weekend").DateHint)
	assert.Empty(t, ExtractEntities("walking tour").DateHint)
}

func TestExtractPriceRange(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"tours under $50", "under $50"},
		{"something between $20 and $80", "$20-$80"},
		{"cheap tours please", "budget"},
		{"only luxury experiences", "premium"},
		{"walking tour", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.input).PriceRange)
		})
	}
}

func TestExtractionIsDeterministic(t *testing.T) {
	const input = "Find historical tours in Berlin under $50 tomorrow"
	first := ExtractEntities(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractEntities(input))
	}
}

func TestEntitiesEmpty(t *testing.T) {
	assert.True(t, Entities{}.Empty())
	assert.False(t, Entities{City: "Rome"}.Empty())
	assert.False(t, Entities{HasNumber: true}.Empty())
}
