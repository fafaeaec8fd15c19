package domain

import "time"

// Status tracks a document's position in the processing pipeline.
type Status string

// Processing states. A document moves Pending -> Analyzing -> Done or Error.
const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// PreviewLimit bounds the extracted text preview stored on a record.
const PreviewLimit = 3000

// DocumentRecord is a document owned by the library.
// The ID is assigned at ingestion and never changes; the stored file is
// named after it so the record and the bytes can always be re-associated.
type DocumentRecord struct {
	// ID is the unique identifier for the document.
	ID string

	// StoredPath is the library-owned location of the bytes.
	StoredPath string

	// OriginalName is the display name the file was ingested under.
	OriginalName string

	// Hash is the content fingerprint. Empty until computed; recomputed
	// on every duplicate scan so it always reflects the current bytes.
	Hash string

	// FileSize is the size of the stored bytes.
	FileSize int64

	// Status is the current processing state.
	Status Status

	// Title is the inferred display title. Empty until analysis runs.
	Title string

	// Category is the inferred category. Empty until analysis runs.
	Category string

	// Emoji is a single-glyph visual hint chosen by the classifier.
	Emoji string

	// Tags are classifier-suggested labels.
	Tags []string

	// Confidence is the classifier's confidence in [0,1].
	Confidence float64

	// TextPreview is the first part of the extracted text, bounded by
	// PreviewLimit. Used by duplicate detection and classification.
	TextPreview string

	// CreatedAt is when the document was ingested. The earliest record
	// in a duplicate group is the keeper.
	CreatedAt time.Time
}

// DisplayTitle returns the inferred title, falling back to the original
// file name when analysis has not produced one.
func (d *DocumentRecord) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.OriginalName
}

// Chunk is a contiguous, possibly overlapping word window of a document's
// extracted text, the unit of semantic indexing. Chunks are immutable once
// created; re-indexing a document removes its old chunks first.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning DocumentRecord. Deleting the
	// document deletes its chunks.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Page is the zero-based page index the text came from.
	Page int

	// Position is the zero-based chunk index within the page, increasing
	// in creation order.
	Position int

	// Embedding is the vector representation. Empty when the embedding
	// provider was unavailable at indexing time; that is a valid state,
	// not an error.
	Embedding []float32
}
