package datastore

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/lib/normalizer"
	"github.com/ValentinKolb/japi/lib/store"
	"github.com/ValentinKolb/japi/lib/store/mstore"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var Logger = logger.GetLogger("datastore")

// Aliases of the store sentinels returned by the datastore.
var (
	ErrUnknownModel       = store.ErrUnknownModel
	ErrRecordNotFound     = store.ErrRecordNotFound
	ErrNoSuchRelationship = store.ErrNoSuchRelationship
	ErrInvalidDocument    = store.ErrInvalidDocument
)

// DataStore fetches JSON:API documents and keeps the normalized records in an
// identity map. There is no global instance; create one per application context.
type DataStore struct {
	// mu serializes normalization, so no caller observes a partially applied document.
	// It is never held while fetching.
	mu         sync.Mutex
	registry   *model.Registry
	fetcher    DocumentFetcher
	records    store.IRecordStore
	normalizer *normalizer.Normalizer
	newID      IDGenerator
	metrics    *storeMetrics
}

type options struct {
	records    store.IRecordStore
	newID      IDGenerator
	metricsSet *metrics.Set
}

// Option configures a DataStore in New.
type Option func(o *options)

// WithRecordStore uses the given record store instead of a new in-memory store.
// The store must know every type of the registry.
func WithRecordStore(records store.IRecordStore) Option {
	return func(o *options) {
		o.records = records
	}
}

// WithIDGenerator replaces NewLocalID for records created without an id.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		o.newID = gen
	}
}

// WithMetricsSet registers the datastore metrics on the given set. Datastores
// sharing a set report aggregated metrics.
func WithMetricsSet(set *metrics.Set) Option {
	return func(o *options) {
		o.metricsSet = set
	}
}

// New creates a datastore for the models of the registry, fetching missing data with fetcher.
func New(registry *model.Registry, fetcher DocumentFetcher, opts ...Option) *DataStore {
	o := &options{newID: NewLocalID}
	for _, opt := range opts {
		opt(o)
	}
	if o.records == nil {
		o.records = mstore.NewMemoryStore(registry)
	}

	ds := &DataStore{
		registry:   registry,
		fetcher:    fetcher,
		records:    o.records,
		normalizer: normalizer.New(registry, o.records),
		newID:      o.newID,
	}
	ds.metrics = newStoreMetrics(o.metricsSet, ds.countRecords)
	return ds
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Registry returns the model registry of the datastore.
func (ds *DataStore) Registry() *model.Registry {
	return ds.registry
}

// Store returns the underlying record store.
func (ds *DataStore) Store() store.IRecordStore {
	return ds.records
}

// Subscribe registers an observer for record changes.
func (ds *DataStore) Subscribe(o store.Observer) (unsubscribe func()) {
	return ds.records.Subscribe(o)
}

// Records returns the cached records of a model ordered by id, without fetching.
func (ds *DataStore) Records(m *model.Model) ([]*store.Record, error) {
	typeName, err := ds.registry.TypeOf(m)
	if err != nil {
		return nil, err
	}
	mapping, err := ds.records.Records(typeName)
	if err != nil {
		return nil, err
	}
	ids := mapping.IDs()
	recs := make([]*store.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := mapping.Get(id); ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// PeekRecord returns a cached record without fetching.
func (ds *DataStore) PeekRecord(m *model.Model, id string) (*store.Record, error) {
	typeName, err := ds.registry.TypeOf(m)
	if err != nil {
		return nil, err
	}
	return ds.records.Lookup(typeName, id)
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// CreateRecord creates a record locally without any network request. The id is
// taken from props["id"] if present, otherwise a new local id is generated. If a
// record with the id exists, props are merged into it and the existing record is
// returned. Props naming a declared relationship take *store.Record values.
func (ds *DataStore) CreateRecord(m *model.Model, props map[string]any) (*store.Record, error) {
	id := ""
	if v, ok := props["id"]; ok && v != nil && !store.IsUndefined(v) {
		id = fmt.Sprint(v)
	}
	if id == "" {
		id = ds.newID()
	}

	res, err := ds.apply(func() (*normalizer.Result, error) {
		return ds.normalizer.Upsert(m, id, props, store.StateCreated)
	})
	if err != nil {
		return nil, err
	}
	return res.Records[0], nil
}

// FindAll always fetches the whole collection of a model, normalizes the primary
// data and included resources and returns the raw document together with the
// canonical records of the primary data.
func (ds *DataStore) FindAll(ctx context.Context, m *model.Model, opts *common.FetchOptions) (*common.Document, []*store.Record, error) {
	const op = "findAll"
	typeName, err := ds.registry.TypeOf(m)
	if err != nil {
		return nil, nil, err
	}

	Logger.Debugf("%s %s: fetching", op, typeName)
	ds.metrics.fetched(op)
	doc, err := ds.fetcher.FetchDocument(ctx, typeName, "", opts)
	if err != nil {
		ds.metrics.failed(op)
		return nil, nil, err
	}

	res, err := ds.apply(func() (*normalizer.Result, error) {
		return ds.normalizer.NormalizeDocument(doc)
	})
	if err != nil {
		ds.metrics.failed(op)
		return nil, nil, err
	}
	return doc, res.Records, nil
}

// FindRecord returns the cached record if present. Otherwise it fetches the
// resource, normalizes the response and returns the canonical record.
// An empty id is rejected without fetching.
func (ds *DataStore) FindRecord(ctx context.Context, m *model.Model, id string, opts *common.FetchOptions) (*store.Record, error) {
	const op = "findRecord"
	typeName, err := ds.registry.TypeOf(m)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, store.NewErrorf(store.RetCInvalidDocument, "%s: empty id", typeName)
	}

	rec, err := ds.records.Lookup(typeName, id)
	if err == nil {
		Logger.Debugf("%s %s#%s: cache hit", op, typeName, id)
		ds.metrics.cacheHits.Inc()
		return rec, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	Logger.Debugf("%s %s#%s: cache miss, fetching", op, typeName, id)
	ds.metrics.cacheMisses.Inc()
	ds.metrics.fetched(op)
	doc, err := ds.fetcher.FetchDocument(ctx, typeName, id, opts)
	if err != nil {
		ds.metrics.failed(op)
		return nil, err
	}
	if _, ok := doc.Data.One(); !ok {
		ds.metrics.failed(op)
		return nil, store.NewErrorf(store.RetCRecordNotFound, "%s#%s: no resource in response", typeName, id)
	}

	res, err := ds.apply(func() (*normalizer.Result, error) {
		return ds.normalizer.NormalizeDocument(doc)
	})
	if err != nil {
		ds.metrics.failed(op)
		return nil, err
	}
	return res.Records[0], nil
}

// FindRelated fetches the related resource(s) of a declared relationship of rec,
// normalizes them and assigns them to the relationship. It always fetches.
// The raw relationship document is returned.
func (ds *DataStore) FindRelated(ctx context.Context, rec *store.Record, name string) (*common.Document, error) {
	const op = "findRelated"
	if rec == nil {
		return nil, store.NewError(store.RetCInternalError, "nil record")
	}
	m, err := ds.registry.Model(rec.Type())
	if err != nil {
		return nil, err
	}
	_, kind, ok := m.Relationship(name)
	if !ok {
		return nil, store.NewErrorf(store.RetCNoSuchRelationship, "%s.%s", rec.Type(), name)
	}

	Logger.Debugf("%s %s.%s (%s): fetching", op, rec, name, kind)
	ds.metrics.fetched(op)
	var doc *common.Document
	switch kind {
	case model.RelationHasMany:
		doc, err = ds.fetcher.FetchHasMany(ctx, rec.Type(), rec.ID(), name)
	default:
		doc, err = ds.fetcher.FetchBelongsTo(ctx, rec.Type(), rec.ID(), name)
	}
	if err != nil {
		ds.metrics.failed(op)
		return nil, err
	}

	if _, err := ds.apply(func() (*normalizer.Result, error) {
		return ds.normalizer.Assign(rec, name, doc)
	}); err != nil {
		ds.metrics.failed(op)
		return nil, err
	}
	return doc, nil
}

// UnloadAll removes every record of every type from the cache.
// Records held by callers stay valid but are no longer canonical.
func (ds *DataStore) UnloadAll() {
	ds.mu.Lock()
	ds.records.UnloadAll()
	ds.mu.Unlock()

	Logger.Debugf("unloaded all records")
	ds.records.Publish(store.Change{Kind: store.ChangeUnloaded})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// apply runs a normalization step under the datastore lock and publishes the
// resulting changes after the lock was released.
func (ds *DataStore) apply(fn func() (*normalizer.Result, error)) (*normalizer.Result, error) {
	ds.mu.Lock()
	res, err := fn()
	ds.mu.Unlock()
	if err != nil {
		return nil, err
	}
	ds.records.Publish(res.Changes...)
	return res, nil
}

func (ds *DataStore) countRecords() float64 {
	total := 0
	for _, name := range ds.registry.Names() {
		total += ds.records.Len(name)
	}
	return float64(total)
}
