package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProcessingInProgress indicates a processing batch is already running.
	ErrProcessingInProgress = errors.New("processing in progress")

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured. Semantic retrieval and the semantic duplicate tier are
	// disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrClassifierUnavailable indicates the categorisation model is not
	// configured. Analysis falls back to the keyword heuristic.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrNoText indicates no extractor produced any text for a document.
	ErrNoText = errors.New("no extractable text")

	// ErrRenameCollision indicates the rename target name is already taken.
	ErrRenameCollision = errors.New("rename target already exists")
)
