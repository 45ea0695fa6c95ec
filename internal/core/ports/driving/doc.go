// Package driving defines the interfaces through which external actors
// drive the retrieval core (primary/inbound ports).
//
// The excluded chat/UI layer consumes QueryService; operator tooling
// consumes CacheAdmin. Implementations live in internal/core/services.
package driving
