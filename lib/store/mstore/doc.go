// Package mstore implements an in-memory record store based on the
// store.IRecordStore interface. The set of types is taken from a model.Registry
// when the store is created; every registered type gets its own store.TypeMap.
// Data is stored entirely in memory and is not persisted between process restarts.
//
// Key Features:
//   - One canonical record per (type, id), enforced with LoadOrStore semantics
//   - Unknown types are rejected, empty types are valid
//   - Bulk unload that swaps all mappings at once
//   - Synchronous observer notifications in subscription order
//
// Implementation Details:
//
//   - Type Mappings: The map from type name to store.TypeMap is guarded by a
//     read-write mutex. UnloadAll replaces every TypeMap under the write lock, so
//     readers either see the old mappings or the new empty ones. A TypeMap obtained
//     before UnloadAll keeps its records but is no longer part of the store.
//
//   - Observers: Observers are kept in an xsync.MapOf keyed by a monotonically
//     increasing id. Publish delivers every change to every observer, in the order
//     in which they subscribed.
//
// Usage Example:
//
//	registry, _ := model.NewRegistry(model.New("person"))
//	s := mstore.NewMemoryStore(registry)
//
//	rec, inserted, err := s.Insert(store.NewRecord("person", "9", store.StateFetched))
//
//	people, _ := s.Records("person")
//	same, err := s.Record(people, "9") // same == rec
//
// Thread Safety:
//
//	All methods are safe for concurrent use. Multi-step operations (like the
//	normalization of a whole document) must be serialized by the caller.
package mstore
