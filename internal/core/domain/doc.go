// Package domain defines the core business entities for docsight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Company: The entity a document belongs to
//   - Document: A parsed source document with structured elements
//   - Chunk: A token-bounded slice of document text
//   - Template: The set of fields requested for extraction
//   - ExtractionResult: The name to value map produced by extraction
//   - Report: The assembled analysis document
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
