package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockeep/dockeep/internal/core/domain"
)

func TestNewModelRequiresAPIKey(t *testing.T) {
	_, err := NewModel(ModelConfig{})
	assert.Error(t, err)
}

func TestNewModelDefaults(t *testing.T) {
	m, err := NewModel(ModelConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, m.baseURL)
	assert.Equal(t, DefaultModel, m.model)
}

func TestParsePayload(t *testing.T) {
	cls, err := parsePayload(`{"title": "Tax Return 2025", "category": "Taxes", "emoji": "📋", "tags": ["tax", "2025"], "confidence": 0.9}`)
	require.NoError(t, err)

	assert.Equal(t, "Tax Return 2025", cls.Title)
	assert.Equal(t, "Taxes", cls.Category)
	assert.Equal(t, "📋", cls.Emoji)
	assert.Equal(t, []string{"tax", "2025"}, cls.Tags)
	assert.InDelta(t, 0.9, cls.Confidence, 1e-9)
}

func TestParsePayloadToleratesFences(t *testing.T) {
	cls, err := parsePayload("Here is the classification:\n```json\n" +
		`{"title": "Wrapped", "category": "Notes", "emoji": "📝", "confidence": 0.7}` +
		"\n```\nLet me know if you need anything else.")
	require.NoError(t, err)
	assert.Equal(t, "Wrapped", cls.Title)
}

func TestParsePayloadMissingTitle(t *testing.T) {
	_, err := parsePayload(`{"category": "Notes", "confidence": 0.7}`)
	assert.Error(t, err)
}

func TestParsePayloadNoJSON(t *testing.T) {
	_, err := parsePayload("I cannot classify this document.")
	assert.Error(t, err)
}

func TestParsePayloadClampsAndFills(t *testing.T) {
	cls, err := parsePayload(`{"title": "T", "confidence": 3.5,
		"tags": ["a", "b", "c", "d", "e", "f", "g"]}`)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cls.Confidence, 1e-9, "confidence clamps to [0,1]")
	assert.Len(t, cls.Tags, 5, "tags are capped at five")
	assert.Equal(t, domain.FallbackCategory, cls.Category)
	assert.Equal(t, domain.FallbackEmoji, cls.Emoji)

	cls, err = parsePayload(`{"title": "T", "confidence": -2}`)
	require.NoError(t, err)
	assert.Zero(t, cls.Confidence)
}
