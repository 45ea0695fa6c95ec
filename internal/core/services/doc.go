// Package services implements the retrieval pipeline: synthesis-query
// classification, multi-query generation, hybrid retrieval with score
// fusion, cross-encoder reranking, context assembly, the two-tier query
// cache, and the collection router that fans retrieval out across
// collections.
//
// Services depend only on the domain package and the driven ports.
// Infrastructure adapters are injected at construction time.
package services
