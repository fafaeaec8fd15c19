// Package sqlite provides the SQLite-backed document store.
// It persists document records and chunks; embeddings are stored as
// little-endian float32 blobs alongside the chunk text.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dockeep/dockeep/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed implementation of driven.DocumentStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.dockeep/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".dockeep", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// WAL for concurrent readers while the single writer works
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match the pattern
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document record.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.DocumentRecord) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, stored_path, original_name, hash, file_size, status,
			title, category, emoji, tags, confidence, text_preview, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stored_path = excluded.stored_path,
			original_name = excluded.original_name,
			hash = excluded.hash,
			file_size = excluded.file_size,
			status = excluded.status,
			title = excluded.title,
			category = excluded.category,
			emoji = excluded.emoji,
			tags = excluded.tags,
			confidence = excluded.confidence,
			text_preview = excluded.text_preview
	`, doc.ID, doc.StoredPath, doc.OriginalName, doc.Hash, doc.FileSize, string(doc.Status),
		doc.Title, doc.Category, doc.Emoji, string(tagsJSON), doc.Confidence,
		doc.TextPreview, doc.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a record by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx, documentSelect+" WHERE id = ?", id)
	return scanDocument(row)
}

// ListDocuments returns all records sorted by creation time ascending.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	return s.queryDocuments(ctx, documentSelect+" ORDER BY created_at, id")
}

// ListByStatus returns records with the given status sorted by creation
// time ascending.
func (s *Store) ListByStatus(ctx context.Context, status domain.Status) ([]domain.DocumentRecord, error) {
	return s.queryDocuments(ctx, documentSelect+" WHERE status = ? ORDER BY created_at, id", string(status))
}

// FindByHash returns records whose content fingerprint equals hash.
func (s *Store) FindByHash(ctx context.Context, hash string) ([]domain.DocumentRecord, error) {
	if hash == "" {
		return nil, nil
	}
	return s.queryDocuments(ctx, documentSelect+" WHERE hash = ? ORDER BY created_at, id", hash)
}

// DeleteDocument removes a record; its chunks cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, page, position, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.Page, chunk.Position, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves a document's chunks ordered by page, position.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT id, document_id, content, page, position, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY page, position
	`, documentID)
}

// ListChunks retrieves chunks for the given documents, or all chunks when
// scope is empty, ordered by document, page, position.
func (s *Store) ListChunks(ctx context.Context, scope []string) ([]domain.Chunk, error) {
	if len(scope) == 0 {
		return s.queryChunks(ctx, `
			SELECT id, document_id, content, page, position, embedding
			FROM chunks
			ORDER BY document_id, page, position
		`)
	}

	placeholders := strings.Repeat("?,", len(scope))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(scope))
	for i, id := range scope {
		args[i] = id
	}

	return s.queryChunks(ctx, fmt.Sprintf(`
		SELECT id, document_id, content, page, position, embedding
		FROM chunks WHERE document_id IN (%s)
		ORDER BY document_id, page, position
	`, placeholders), args...)
}

// DeleteChunks removes all chunks owned by a document.
func (s *Store) DeleteChunks(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

const documentSelect = `
	SELECT id, stored_path, original_name, hash, file_size, status,
		title, category, emoji, tags, confidence, text_preview, created_at
	FROM documents`

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
			&chunk.Page, &chunk.Position, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (*domain.DocumentRecord, error) {
	doc, err := scanDocumentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

func scanDocumentRows(rows *sql.Rows) (*domain.DocumentRecord, error) {
	return scanDocumentRow(rows)
}

func scanDocumentRow(row rowScanner) (*domain.DocumentRecord, error) {
	var doc domain.DocumentRecord
	var status, tagsJSON string
	var createdAt time.Time
	if err := row.Scan(&doc.ID, &doc.StoredPath, &doc.OriginalName, &doc.Hash,
		&doc.FileSize, &status, &doc.Title, &doc.Category, &doc.Emoji,
		&tagsJSON, &doc.Confidence, &doc.TextPreview, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.Status(status)
	doc.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}

	return &doc, nil
}

// float32SliceToBytes packs a vector as little-endian float32 bytes.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
