// Package rpc contains everything that talks to a JSON:API service on behalf of
// the record store.
//
// The package is organized into several subpackages:
//
//   - common: The wire document model (Document, Resource, Relationship linkage),
//     fetch options, the client configuration and logging.
//
//   - serializer: Converts between documents and byte arrays (JSON).
//
//   - transport: The IDocumentFetcher interface with an HTTP implementation and an
//     in-memory implementation backed by fixtures.
package rpc
