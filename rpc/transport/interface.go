package transport

import (
	"context"
	"errors"
	"github.com/ValentinKolb/japi/rpc/common"
)

// --------------------------------------------------------------------------
// Document Fetcher
// --------------------------------------------------------------------------

// IDocumentFetcher is the interface for the client side of a JSON:API service.
// Type names are passed in their singular form, as registered in the model registry;
// the fetcher decides how they are spelled on the wire.
type IDocumentFetcher interface {
	// Connect initializes the fetcher with the given configuration
	Connect(config common.ClientConfig) error
	// FetchDocument fetches a single resource, or the whole collection if id is empty.
	// The options are applied to the request as-is.
	FetchDocument(ctx context.Context, typeName, id string, opts *common.FetchOptions) (*common.Document, error)
	// FetchHasMany fetches the related resources of a to-many relationship.
	// The primary data of the returned document is a collection.
	FetchHasMany(ctx context.Context, typeName, id, relationship string) (*common.Document, error)
	// FetchBelongsTo fetches the related resource of a to-one relationship.
	// The primary data of the returned document is a single resource or null.
	FetchBelongsTo(ctx context.Context, typeName, id, relationship string) (*common.Document, error)
	// Close releases all resources of the fetcher
	Close() error
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrNotConnected is returned if a fetch is attempted before Connect.
	ErrNotConnected = errors.New("japi: fetcher not connected")
	// ErrHTTPStatus is returned (wrapping a *common.APIError) for non-2xx responses.
	ErrHTTPStatus = errors.New("japi: unexpected http status")
	// ErrDocumentNotFound is returned by fetchers that have no document for a request.
	ErrDocumentNotFound = errors.New("japi: document not found")
	// ErrUnexpectedData is returned if the primary data does not fit the request
	// (e.g. a collection for a to-one relationship).
	ErrUnexpectedData = errors.New("japi: unexpected primary data")
)

// CheckHasMany verifies that doc can answer a to-many request.
func CheckHasMany(doc *common.Document) error {
	if doc == nil || !doc.Data.IsCollection() {
		return ErrUnexpectedData
	}
	return nil
}

// CheckBelongsTo verifies that doc can answer a to-one request.
func CheckBelongsTo(doc *common.Document) error {
	if doc == nil || doc.Data.IsCollection() {
		return ErrUnexpectedData
	}
	return nil
}
