package driven

import "context"

// ByteStore owns the library's file storage.
// It must support reading arbitrary byte ranges (for fingerprinting) and
// the full content (for extraction).
type ByteStore interface {
	// Copy brings external bytes into the library under the given stored
	// name and returns the stored path.
	Copy(ctx context.Context, sourcePath, storedName string) (string, error)

	// Move renames a stored file, returning the new path.
	// Fails with domain.ErrRenameCollision when the target exists.
	Move(ctx context.Context, storedPath, newName string) (string, error)

	// Delete removes a stored file.
	Delete(ctx context.Context, storedPath string) error

	// List returns the stored paths currently present in the library.
	List(ctx context.Context) ([]string, error)

	// Size returns the byte size of a stored file.
	Size(ctx context.Context, storedPath string) (int64, error)
}
