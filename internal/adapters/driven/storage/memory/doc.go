// Package memory provides in-memory implementations of the driven
// storage ports: a token-frequency lexical index, an exact-scan vector
// store doubling as the collection catalog, a TTL cache store, and a
// linear-scan semantic store.
//
// These adapters back tests and local single-process runs. Production
// deployments substitute external search and cache services behind the
// same ports.
package memory
