// Package http implements the document fetcher for JSON:API services over HTTP,
// plus a small read-only JSON:API server used to serve fixtures.
//
// The package focuses on:
//   - Building JSON:API request URLs and query parameters
//   - Round-robin load balancing across multiple service endpoints
//   - Retries and an optional circuit breaker around every request
//   - Mapping JSON:API error documents to *common.APIError
//
// Key Components:
//
//   - httpFetcher: Implements the IDocumentFetcher interface. Type names are
//     pluralized for the URL (article -> /articles). Requests are:
//
//     GET /{types}                  FetchDocument without id
//     GET /{types}/{id}             FetchDocument with id
//     GET /{types}/{id}/{relation}  FetchHasMany, FetchBelongsTo
//
//     Fetch options are encoded as include=, sort=, fields[type]= and filter[name]=
//     parameters. Configured headers (e.g. Authorization) are sent with every request.
//     Non-2xx responses return an error wrapping both transport.ErrHTTPStatus and a
//     *common.APIError carrying the decoded error objects.
//
//   - Circuit Breaker: With ClientConfig.Breaker.Enabled every request runs through a
//     gobreaker.CircuitBreaker. Only network failures and 5xx responses count as
//     failures; while the breaker is open requests fail with gobreaker.ErrOpenState.
//
//   - documentServer: An http.Handler (NewDocumentServer) that answers the same
//     routes from any IDocumentFetcher, typically the memory fetcher loaded with fixtures.
//
// Thread Safety:
//
//	The fetcher is safe for concurrent use once connected. It uses atomic
//	operations for the round-robin counter.
package http
