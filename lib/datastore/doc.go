// Package datastore coordinates fetching JSON:API documents and caching the
// normalized records.
//
// A DataStore ties together a model registry, a record store (the identity map)
// and a document fetcher. Records are always returned as canonical instances:
// every operation that yields the same (type, id) returns the same pointer until
// UnloadAll is called.
//
// Operations:
//
//   - CreateRecord: creates (or merges into) a record locally, without network access.
//   - FindAll: always fetches the collection of a model.
//   - FindRecord: cache-first, fetches only if the record is not cached.
//   - FindRelated: always fetches a declared relationship and assigns the result.
//   - UnloadAll: empties the cache.
//
// Concurrency:
//
//	A DataStore is safe for concurrent use. Fetches run without holding any lock;
//	normalizing the result runs under the datastore mutex, and observers are
//	notified after it was released. Concurrent requests for the same uncached
//	record are not merged: each of them fetches.
//
// Metrics:
//
//	Every DataStore owns a metrics.Set (github.com/VictoriaMetrics/metrics) with
//	fetch, cache hit/miss and error counters and a gauge of the cached records.
//	WriteMetrics exports it in Prometheus text format.
//
// Usage Example:
//
//	registry, _ := model.NewRegistry(article, person, comment)
//	ds := datastore.New(registry, fetcher)
//
//	rec, err := ds.FindRecord(ctx, article, "1", &common.FetchOptions{Include: []string{"author"}})
//	doc, err := ds.FindRelated(ctx, rec, "comments")
package datastore
