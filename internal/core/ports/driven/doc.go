// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Record and chunk persistence
//   - ByteStore: Library-owned file storage
//   - TextExtractor: Page-oriented text extraction (primary and fallback)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, semantic
//     retrieval returns no results and the semantic duplicate tier falls
//     back to string similarity alone.
//   - Classifier: Categorises documents. Without it, the local keyword
//     heuristic is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
