// Package normalizer converts JSON:API resources into canonical records.
//
// Normalization runs in two phases. The plan phase resolves the model of every
// resource (the wire type may be singular or plural, see model.Registry.Resolve)
// and every linkage identifier, either to a resource of the same document or to a
// record that is already cached. The commit phase inserts new records, merges
// attributes into existing ones and assigns relationships. A document that fails
// to resolve therefore leaves the record store untouched.
//
// Merge rules:
//   - Attributes absent from a payload keep their current value; null overwrites
//   - Attributes not declared by the model are dropped (if the model declares any)
//   - Only the relationships of primary resources are assigned
//   - Relationships that are not declared, or carry no linkage data, are ignored
//
// The normalizer returns the collected changes instead of publishing them, so the
// caller can notify observers after releasing its locks.
package normalizer
