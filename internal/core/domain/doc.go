// Package domain defines the core business entities for dockeep.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentRecord: A library-owned document with metadata
//   - Chunk: The unit of semantic indexing
//   - Classification: The categorisation result for a document
//   - DuplicateGroup / ScanResult: The derived duplicate-scan view
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
