package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// words builds a test text of n distinct tokens.
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestSplitEmpty(t *testing.T) {
	c := ForIndexing()
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplitSingleWindow(t *testing.T) {
	c := ForIndexing()
	out := c.Split(words(100))
	require.Len(t, out, 1)
	assert.Equal(t, 100, len(strings.Fields(out[0])))
}

func TestSplitWindowAndStep(t *testing.T) {
	c := New(WithWindowSize(10), WithOverlap(3))
	out := c.Split(words(30))

	// step = 7: windows start at 0, 7, 14, 21; the window at 21 reaches
	// the end and stops the scan.
	require.Len(t, out, 4)
	assert.Equal(t, 10, len(strings.Fields(out[0])))
	assert.Equal(t, 10, len(strings.Fields(out[1])))
	assert.True(t, strings.HasPrefix(out[1], "w7 "))
	// Final window is the remainder.
	assert.Equal(t, 9, len(strings.Fields(out[3])))
}

func TestSplitOverlapRepeatsWords(t *testing.T) {
	c := New(WithWindowSize(10), WithOverlap(3))
	out := c.Split(words(20))
	require.GreaterOrEqual(t, len(out), 2)

	// The last 3 words of window 0 reappear at the start of window 1.
	first := strings.Fields(out[0])
	second := strings.Fields(out[1])
	assert.Equal(t, first[7:], second[:3])
}

func TestSplitCoversAllWords(t *testing.T) {
	c := ForIndexing()
	total := 700
	out := c.Split(words(total))

	seen := make(map[string]bool)
	for _, window := range out {
		for _, w := range strings.Fields(window) {
			seen[w] = true
		}
	}
	assert.Len(t, seen, total, "every word appears in at least one window")
}

func TestSplitMinChars(t *testing.T) {
	c := New(WithWindowSize(10), WithOverlap(2), WithMinChars(50))
	out := c.Split("a b c")
	assert.Empty(t, out, "a 5-character window is below the minimum")

	out = c.Split(strings.TrimSpace(strings.Repeat("documentword ", 10)))
	assert.NotEmpty(t, out)
}

func TestNewClampsDegenerateOverlap(t *testing.T) {
	// Overlap >= window size would stall the scan; New clamps it.
	c := New(WithWindowSize(8), WithOverlap(20))
	out := c.Split(words(30))
	assert.NotEmpty(t, out)
	assert.Less(t, len(out), 30)
}

func TestForComparisonDropsNoiseText(t *testing.T) {
	c := ForComparison()
	// The whole text fits one window but is below CompareMinChars.
	assert.Empty(t, c.Split("a b c"))
	assert.NotEmpty(t, c.Split(words(40)))
}
