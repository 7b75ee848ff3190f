// Package replication implements the checkpoint-based pull/push protocol
// that keeps client-held replicas in sync with the server-authoritative
// store.
//
// The engine is generic over record types: collection-specific behaviour
// (key field name, storage access, JSON column transforms) is supplied
// through the CollectionBinding interface, and the pull and push handlers
// depend only on that interface.
//
// Pull and push are independent, stateless, retry-safe operations. Pull is
// strictly read-only; push is all-or-nothing within one batch. Conflicts are
// a normal protocol outcome, returned as data rather than errors.
package replication
