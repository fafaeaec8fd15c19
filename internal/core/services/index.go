package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dockeep/dockeep/internal/chunker"
	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
	"github.com/dockeep/dockeep/internal/core/ports/driving"
	"github.com/dockeep/dockeep/internal/logger"
	"github.com/dockeep/dockeep/internal/vector"
)

// Ensure SemanticIndex implements the interface.
var _ driving.Retriever = (*SemanticIndex)(nil)

// ChunkMatchThreshold is the per-chunk cosine similarity above which a
// comparison chunk counts as matched.
const ChunkMatchThreshold = 0.85

// compareChunkCap bounds how many chunks per side Compare scores.
// Caps cost on long documents; accepts reduced recall on later content.
const compareChunkCap = 5

// SemanticIndex owns the chunk mapping for the library: it chunks page
// text, attaches embeddings, and answers top-K retrieval and pairwise
// document-similarity queries.
type SemanticIndex struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService // optional
}

// NewSemanticIndex creates a semantic index over the given store.
// The embedder is optional; without it, indexing stores chunks with empty
// vectors and retrieval returns no results.
func NewSemanticIndex(docStore driven.DocumentStore, embedder driven.EmbeddingService) *SemanticIndex {
	return &SemanticIndex{
		docStore: docStore,
		embedder: embedder,
	}
}

// IndexPage chunks one page of a document's text and persists the chunks
// with sequential positions. An unavailable embedding provider leaves the
// vectors empty; that is not an error.
func (s *SemanticIndex) IndexPage(ctx context.Context, documentID string, page int, text string) error {
	windows := chunker.ForIndexing().Split(text)
	if len(windows) == 0 {
		return nil
	}

	embeddings := s.embedAll(ctx, windows)

	chunks := make([]domain.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    w,
			Page:       page,
			Position:   i,
			Embedding:  embeddings[i],
		})
	}

	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	logger.Debug("Indexed %d chunks for document %s page %d", len(chunks), documentID, page)
	return nil
}

// ClearDocument removes a document's chunks. Chunks are immutable, so
// re-indexing always clears first.
func (s *SemanticIndex) ClearDocument(ctx context.Context, documentID string) error {
	return s.docStore.DeleteChunks(ctx, documentID)
}

// Retrieve embeds the query and returns the most similar chunks, best
// first, at most opts.Limit of them. Retrieval is embedding-only: with
// no provider the result is empty, never a partial-text fallback.
func (s *SemanticIndex) Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.RetrievalHit, error) {
	if s.embedder == nil {
		logger.Debug("Retrieve: no embedding provider, returning no results")
		return []domain.RetrievalHit{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Retrieve: query embedding failed: %v", err)
		return []domain.RetrievalHit{}, nil
	}

	candidates, err := s.docStore.ListChunks(ctx, opts.Scope)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	type scored struct {
		chunk domain.Chunk
		score float64
	}
	scoredChunks := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		// Mismatched or missing vectors score 0.0 rather than erroring.
		scoredChunks = append(scoredChunks, scored{
			chunk: c,
			score: vector.Cosine(queryVec, c.Embedding),
		})
	}

	// Stable: ties keep original chunk order.
	sort.SliceStable(scoredChunks, func(i, j int) bool {
		return scoredChunks[i].score > scoredChunks[j].score
	})

	limit := opts.Limit
	if limit <= 0 || limit > len(scoredChunks) {
		limit = len(scoredChunks)
	}

	hits := make([]domain.RetrievalHit, 0, limit)
	docs := make(map[string]*domain.DocumentRecord)
	for _, sc := range scoredChunks[:limit] {
		doc, ok := docs[sc.chunk.DocumentID]
		if !ok {
			doc, err = s.docStore.GetDocument(ctx, sc.chunk.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("get document %s: %w", sc.chunk.DocumentID, err)
			}
			docs[sc.chunk.DocumentID] = doc
		}
		hits = append(hits, domain.RetrievalHit{
			Chunk:    sc.chunk,
			Document: *doc,
			Score:    sc.score,
		})
	}

	return hits, nil
}

// Compare scores how much of textA is covered by textB: both sides are
// chunked with the comparison configuration, capped at five chunks each,
// and each chunk of A counts as matched when its best cosine similarity
// among B's chunks exceeds ChunkMatchThreshold. The result is
// matched/total-chunks-of-A, so argument order affects the denominator
// but not the match test.
func (s *SemanticIndex) Compare(ctx context.Context, textA, textB string) (float64, error) {
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	c := chunker.ForComparison()
	chunksA := capChunks(c.Split(textA))
	chunksB := capChunks(c.Split(textB))
	if len(chunksA) == 0 || len(chunksB) == 0 {
		return 0, nil
	}

	vecsA, err := s.embedder.EmbedBatch(ctx, chunksA)
	if err != nil {
		return 0, fmt.Errorf("embed side A: %w", err)
	}
	vecsB, err := s.embedder.EmbedBatch(ctx, chunksB)
	if err != nil {
		return 0, fmt.Errorf("embed side B: %w", err)
	}

	matched := 0
	for _, va := range vecsA {
		best := 0.0
		for _, vb := range vecsB {
			if sim := vector.Cosine(va, vb); sim > best {
				best = sim
			}
		}
		if best > ChunkMatchThreshold {
			matched++
		}
	}

	return float64(matched) / float64(len(vecsA)), nil
}

// embedAll returns one vector per window, empty vectors when the provider
// is unavailable or fails. Embedding failure never aborts indexing.
func (s *SemanticIndex) embedAll(ctx context.Context, windows []string) [][]float32 {
	embeddings := make([][]float32, len(windows))
	if s.embedder == nil {
		return embeddings
	}

	vecs, err := s.embedder.EmbedBatch(ctx, windows)
	if err != nil {
		logger.Warn("Embedding %d chunks failed, storing without vectors: %v", len(windows), err)
		return embeddings
	}
	copy(embeddings, vecs)
	return embeddings
}

func capChunks(chunks []string) []string {
	if len(chunks) > compareChunkCap {
		return chunks[:compareChunkCap]
	}
	return chunks
}
