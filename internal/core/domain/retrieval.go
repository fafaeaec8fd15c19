package domain

// RetrieveOptions configures a semantic retrieval query.
type RetrieveOptions struct {
	// Limit is the maximum number of chunks returned.
	Limit int

	// Scope restricts candidates to chunks of these documents.
	// Empty means all indexed chunks.
	Scope []string
}

// RetrievalHit is a single retrieved chunk with its similarity score.
type RetrievalHit struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Document is the chunk's owning record.
	Document DocumentRecord

	// Score is the cosine similarity to the query, in [0,1] for this
	// domain.
	Score float64
}
