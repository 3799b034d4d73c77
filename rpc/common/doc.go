// Package common provides the data structures shared by the record store and
// its transports: the JSON:API wire document, fetch options, the client
// configuration and the logger setup.
//
// The package focuses on:
//   - The JSON:API document shape (subset) used on the wire
//   - Configuration structures for document fetchers
//   - Custom logging implementation integrated with the Dragonboat logger facade
//
// Key Components:
//
//   - Document: A JSON:API top-level document. PrimaryData distinguishes a single
//     resource, null and a collection. Relationship keeps its linkage raw and decodes
//     it on demand (Linkage), so "no data member", null, a single identifier and an
//     array of identifiers can be told apart.
//
//   - FetchOptions: include, sparse fieldsets, sort and filter parameters. The record
//     store passes them through; only fetchers interpret them.
//
//   - ClientConfig: Configuration for fetchers (endpoints, timeout, retries, headers
//     and circuit breaker), validated with struct tags (go-playground/validator).
//
//   - APIError: The error returned for a non-2xx response, carrying the JSON:API
//     error objects of the response body.
//
//   - Logger: Every package logs through logger.GetLogger(name) of the Dragonboat
//     logger facade. InitLoggers installs a factory backed by zap and sets the level
//     of all package loggers.
package common
