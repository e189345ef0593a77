// Package services contains core business logic implementations.
// Services implement the driving ports and depend on driven ports for
// external resources (LLM, embeddings, vector store, parsers, storage).
//
// Services degrade gracefully: optional collaborators may be nil, in which
// case the dependent behaviour falls back to a deterministic local path or
// is skipped with a recorded warning, never a panic.
package services
