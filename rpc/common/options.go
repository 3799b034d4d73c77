package common

// FetchOptions customizes a fetch request. The record store passes it through
// to the fetcher without looking at it.
type FetchOptions struct {
	// Include lists relationship paths to side-load (include=a,b.c).
	Include []string
	// Fields maps a type to the fields to return for it (fields[type]=a,b).
	Fields map[string][]string
	// Sort lists sort fields, prefixed with "-" for descending order.
	Sort []string
	// Filter maps filter names to values (filter[name]=value).
	Filter map[string]string
}
