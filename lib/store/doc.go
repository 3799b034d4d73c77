// Package store provides the identity map of the JSON:API record cache: the canonical
// Record type, the per-type TypeMap and the IRecordStore interface, together with the
// error system and the change notifications shared by all packages of the library.
//
// The package focuses on:
//   - Identity: at most one Record instance exists for each (type, id) pair
//   - Merge semantics: records are updated in place, never replaced
//   - Observability: mutations can be published to subscribed observers
//
// Key Components:
//
//   - Record: The canonical in-memory instance of one entity. The type and id of a
//     record are immutable, its attributes and relationships are mutable. Attribute
//     values equal to Undefined are treated as "no update" when merging. Relationships
//     distinguish "never loaded" from "loaded but empty".
//
//   - TypeMap: The id -> record mapping of one type, backed by a concurrent map
//     (xsync.MapOf).
//
//   - IRecordStore Interface: The mapping from type name to TypeMap. Implementations
//     must refuse unknown types with an error that has code RetCUnknownModel, and
//     return RetCRecordNotFound for missing ids.
//
//   - Error System: A structured error type with typed codes. Each code has a
//     sentinel value (ErrUnknownModel, ErrRecordNotFound, ...) that can be used
//     with errors.Is, also for wrapped errors.
//
//   - Observer: Receives Change notifications. Stores never notify from inside
//     a mutation; the caller collects changes and calls Publish once it is done.
//
// Implementations:
//
//	The in-memory implementation lives in the "github.com/ValentinKolb/japi/lib/store/mstore"
//	package.
package store
