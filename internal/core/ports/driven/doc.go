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
//   - NativeExtractor: Text-layer extraction from document bytes
//   - DocumentStore: Company/document/field/report persistence
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades along its fallback ladders:
//
//   - DocumentParser: Remote document-parse/OCR service. Without it,
//     scanned documents fall back to the local OCR engine.
//   - PageRenderer + OCREngine: Local OCR fallback. Without them, scanned
//     documents yield empty text.
//   - LLMService: Field extraction degrades to the keyword fallback;
//     report assembly is disabled.
//   - EmbeddingService + VectorStore: Ingestion skips vectors and report
//     grounding runs without retrieved context.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
