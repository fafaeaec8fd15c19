// Package memory provides in-memory implementations of the storage ports,
// used by tests and as a zero-setup fallback.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.DocumentRecord
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.DocumentRecord),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document record.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a record by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all records sorted by creation time ascending.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedDocuments(func(domain.DocumentRecord) bool { return true }), nil
}

// ListByStatus returns records with the given status sorted by creation
// time ascending.
func (s *DocumentStore) ListByStatus(_ context.Context, status domain.Status) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedDocuments(func(d domain.DocumentRecord) bool { return d.Status == status }), nil
}

// FindByHash returns records whose content fingerprint equals hash.
func (s *DocumentStore) FindByHash(_ context.Context, hash string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedDocuments(func(d domain.DocumentRecord) bool { return hash != "" && d.Hash == hash }), nil
}

// DeleteDocument removes a record and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// SaveChunks stores chunks for a document, appending to any pages already
// indexed in this round.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := chunks[0].DocumentID
	s.chunks[docID] = append(s.chunks[docID], chunks...)
	return nil
}

// GetChunks retrieves a document's chunks ordered by page, position.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := append([]domain.Chunk(nil), s.chunks[documentID]...)
	sortChunks(chunks)
	return chunks, nil
}

// ListChunks retrieves chunks for the given documents, or all chunks when
// scope is empty, ordered by document, page, position.
func (s *DocumentStore) ListChunks(_ context.Context, scope []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docIDs []string
	if len(scope) > 0 {
		docIDs = scope
	} else {
		for id := range s.chunks {
			docIDs = append(docIDs, id)
		}
		sort.Strings(docIDs)
	}

	var all []domain.Chunk
	for _, id := range docIDs {
		chunks := append([]domain.Chunk(nil), s.chunks[id]...)
		sortChunks(chunks)
		all = append(all, chunks...)
	}
	return all, nil
}

// DeleteChunks removes all chunks owned by a document.
func (s *DocumentStore) DeleteChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

func (s *DocumentStore) sortedDocuments(keep func(domain.DocumentRecord) bool) []domain.DocumentRecord {
	var docs []domain.DocumentRecord
	for _, doc := range s.documents {
		if keep(doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}

func sortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].Page != chunks[j].Page {
			return chunks[i].Page < chunks[j].Page
		}
		return chunks[i].Position < chunks[j].Position
	})
}
