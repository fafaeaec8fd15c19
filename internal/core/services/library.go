package services

import (
	"context"
	"fmt"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
	"github.com/dockeep/dockeep/internal/core/ports/driving"
	"github.com/dockeep/dockeep/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.Library = (*LibraryService)(nil)

// LibraryService manages the document collection outside the processing
// pipeline: listing, renames, deletion, and orphan pruning.
type LibraryService struct {
	docStore  driven.DocumentStore
	byteStore driven.ByteStore
}

// NewLibraryService creates a library service.
func NewLibraryService(docStore driven.DocumentStore, byteStore driven.ByteStore) *LibraryService {
	return &LibraryService{
		docStore:  docStore,
		byteStore: byteStore,
	}
}

// List returns all records sorted by creation time ascending.
func (s *LibraryService) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a record by ID.
func (s *LibraryService) Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Rename moves the stored file to the new name and updates the record's
// display name. A name collision surfaces as domain.ErrRenameCollision;
// the record is left untouched.
func (s *LibraryService) Rename(ctx context.Context, documentID, newName string) error {
	rec, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	newPath, err := s.byteStore.Move(ctx, rec.StoredPath, newName)
	if err != nil {
		return fmt.Errorf("move stored file: %w", err)
	}

	rec.StoredPath = newPath
	rec.OriginalName = newName
	if err := s.docStore.SaveDocument(ctx, rec); err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	return nil
}

// Delete removes the stored bytes, the record, and its chunks. A missing
// file is logged and the record still goes away; the record must not
// outlive an explicit delete.
func (s *LibraryService) Delete(ctx context.Context, documentID string) error {
	rec, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := s.byteStore.Delete(ctx, rec.StoredPath); err != nil {
		logger.Warn("Delete stored file %s failed: %v", rec.StoredPath, err)
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	return nil
}

// PruneOrphans removes stored files no record references. Per-file
// failures are logged and skipped; the count of removed files is
// returned.
func (s *LibraryService) PruneOrphans(ctx context.Context) (int, error) {
	stored, err := s.byteStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored files: %w", err)
	}

	records, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	referenced := make(map[string]struct{}, len(records))
	for i := range records {
		referenced[records[i].StoredPath] = struct{}{}
	}

	pruned := 0
	for _, path := range stored {
		if _, ok := referenced[path]; ok {
			continue
		}
		if err := s.byteStore.Delete(ctx, path); err != nil {
			logger.Warn("Prune orphan %s failed: %v", path, err)
			continue
		}
		pruned++
	}

	return pruned, nil
}
