// Package registry stores the materialized observations (entities) of every
// configuration instance.
//
// An entity row is keyed by its observation identifier and scoped by
// namespace and configuration instance (scope). The reconciliation engine
// reads the actual identifier set from here and applies add/remove deltas
// back.
//
// Architecture:
//
//	Registry (cache, thread-safe) -> Repository (interface) -> SQLiteRepository
//
// The cache is loaded by RefreshCache at startup and kept in step by Add and
// Remove. All public Registry methods are safe for concurrent use.
package registry
