// Package transport defines the interface between the record store and a
// JSON:API service. The record store only depends on the three fetch operations;
// connection management, request construction (URLs, query parameters, headers,
// authentication) and failure handling (retries, circuit breaking) belong to the
// implementations.
//
// Key Components:
//
//   - IDocumentFetcher: Interface for fetcher implementations. A fetch either
//     returns a complete document or an error; there is no partial result.
//
//   - Errors: Sentinel errors shared by the implementations (ErrNotConnected,
//     ErrHTTPStatus, ErrDocumentNotFound, ErrUnexpectedData).
//
// Implementations:
//
//   - http: Fetches documents from a JSON:API service over HTTP
//     ("github.com/ValentinKolb/japi/rpc/transport/http").
//
//   - memory: Serves documents registered in memory or loaded from a fixtures
//     directory ("github.com/ValentinKolb/japi/rpc/transport/memory").
package transport
