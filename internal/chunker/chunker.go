// Package chunker provides a word-window text splitter.
// Text is split on whitespace into tokens and re-joined into overlapping
// fixed-size windows, the unit of semantic indexing and comparison.
package chunker

import "strings"

// DefaultWindowSize is the default number of words per window.
const DefaultWindowSize = 250

// IndexOverlap is the overlap used on the persistent indexing path.
// Tighter windows keep storage duplication down.
const IndexOverlap = 50

// CompareOverlap is the overlap used on the document-comparison path.
// More redundancy tolerates small edits between near-duplicate texts.
const CompareOverlap = 100

// CompareMinChars discards comparison windows shorter than this many
// characters as noise.
const CompareMinChars = 50

// Chunker splits text into overlapping word windows.
// It holds no position state between calls; re-chunking the same text is
// deterministic.
type Chunker struct {
	windowSize int
	overlap    int
	minChars   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithWindowSize sets the window size in words.
func WithWindowSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.windowSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in words.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinChars discards windows shorter than n characters. Zero keeps all.
func WithMinChars(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minChars = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		windowSize: DefaultWindowSize,
		overlap:    IndexOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave the window advancing
	if c.overlap >= c.windowSize {
		c.overlap = c.windowSize / 4
	}

	return c
}

// ForIndexing returns the chunker configuration used when persisting
// chunks to the semantic index.
func ForIndexing() *Chunker {
	return New(WithWindowSize(DefaultWindowSize), WithOverlap(IndexOverlap))
}

// ForComparison returns the chunker configuration used when scoring two
// documents against each other.
func ForComparison() *Chunker {
	return New(
		WithWindowSize(DefaultWindowSize),
		WithOverlap(CompareOverlap),
		WithMinChars(CompareMinChars),
	)
}

// Split divides text into successive windows of windowSize words advancing
// by windowSize-overlap words per step, joined with single spaces. The
// final window may be shorter when fewer words remain. Empty tokens are
// filtered out.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.windowSize - c.overlap
	windows := make([]string, 0, len(words)/step+1)

	for start := 0; start < len(words); start += step {
		end := start + c.windowSize
		if end > len(words) {
			end = len(words)
		}

		window := strings.Join(words[start:end], " ")
		if c.minChars == 0 || len(window) >= c.minChars {
			windows = append(windows, window)
		}

		if end == len(words) {
			break
		}
	}

	return windows
}
