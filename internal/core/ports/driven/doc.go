// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - LexicalIndex: BM25-style keyword search over indexed chunks
//   - VectorStore: nearest-neighbour search plus chunk hydration
//   - CollectionCatalog: lists the searchable collections
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: query embeddings. Without it, dense retrieval and
//     the semantic cache tier are disabled and retrieval is lexical-only.
//   - CrossEncoder: candidate reranking. Without it, ranking falls back to
//     fused-score order.
//   - CacheStore: persistent exact-cache backend. Without it, the exact
//     tier lives in process memory only.
//   - SemanticStore: semantic cache storage. Without it, the semantic tier
//     is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
