package datastore

import (
	"context"
	"github.com/ValentinKolb/japi/rpc/common"
)

// DocumentFetcher is the part of transport.IDocumentFetcher the datastore needs.
// Connecting and closing the fetcher is up to the caller.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, typeName, id string, opts *common.FetchOptions) (*common.Document, error)
	FetchHasMany(ctx context.Context, typeName, id, relationship string) (*common.Document, error)
	FetchBelongsTo(ctx context.Context, typeName, id, relationship string) (*common.Document, error)
}
