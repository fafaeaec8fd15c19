package driven

import (
	"context"

	"github.com/dockeep/dockeep/internal/core/domain"
)

// DocumentStore persists document records and chunks.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.DocumentRecord) error

	// GetDocument retrieves a record by ID.
	GetDocument(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// ListDocuments returns all records sorted by creation time ascending.
	ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error)

	// ListByStatus returns records with the given status sorted by
	// creation time ascending.
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.DocumentRecord, error)

	// FindByHash returns records whose content fingerprint equals hash.
	FindByHash(ctx context.Context, hash string) ([]domain.DocumentRecord, error)

	// DeleteDocument removes a record and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves a document's chunks ordered by page, position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListChunks retrieves chunks for the given documents, or all chunks
	// when scope is empty, ordered by document, page, position.
	ListChunks(ctx context.Context, scope []string) ([]domain.Chunk, error)

	// DeleteChunks removes all chunks owned by a document.
	DeleteChunks(ctx context.Context, documentID string) error
}
