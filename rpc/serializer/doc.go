// Package serializer converts JSON:API documents between their wire form and
// the common.Document structure. It defines a common interface so fetchers do
// not depend on a specific encoding.
//
// Key Components:
//
//   - IDocumentSerializer: Core interface that all serializer implementations must satisfy.
//
//   - jsonSerializerImpl: Implementation using JSON encoding. NewJSONSerializer
//     produces compact output, NewPrettyJSONSerializer indented output for
//     fixtures and command line output.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s := serializer.NewJSONSerializer()
//	var doc common.Document
//	err := s.Deserialize(body, &doc)
package serializer
