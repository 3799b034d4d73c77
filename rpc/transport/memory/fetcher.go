package memory

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/serializer"
	"github.com/ValentinKolb/japi/rpc/transport"
	"github.com/jinzhu/inflection"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

var Logger = logger.GetLogger("fetcher/memory")

// collectionKey is the id used for collection documents.
const collectionKey = "index"

// Fetcher serves documents that were registered up front. It counts every
// fetch, which makes it useful to check cache behavior in tests.
type Fetcher struct {
	documents *xsync.MapOf[string, *common.Document]
	calls     atomic.Int64
	mu        sync.RWMutex
	failure   error
}

// NewMemoryFetcher creates an empty memory fetcher.
func NewMemoryFetcher() *Fetcher {
	return &Fetcher{
		documents: xsync.NewMapOf[string, *common.Document](),
	}
}

var _ transport.IDocumentFetcher = (*Fetcher)(nil)

// --------------------------------------------------------------------------
// Registration
// --------------------------------------------------------------------------

// PutCollection registers the document returned for FetchDocument(typeName, "").
func (f *Fetcher) PutCollection(typeName string, doc *common.Document) {
	f.documents.Store(key(typeName, collectionKey), doc)
}

// PutDocument registers the document returned for FetchDocument(typeName, id).
func (f *Fetcher) PutDocument(typeName, id string, doc *common.Document) {
	f.documents.Store(key(typeName, id), doc)
}

// PutRelated registers the document returned for a relationship of typeName#id.
func (f *Fetcher) PutRelated(typeName, id, relationship string, doc *common.Document) {
	f.documents.Store(key(typeName, id, relationship), doc)
}

// FailWith makes every following fetch fail with err (nil resets).
func (f *Fetcher) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failure = err
}

// Calls returns the number of fetches so far (including failed ones).
func (f *Fetcher) Calls() int {
	return int(f.calls.Load())
}

// ResetCalls sets the fetch counter back to zero.
func (f *Fetcher) ResetCalls() {
	f.calls.Store(0)
}

// LoadDir registers all documents of a fixtures directory. The layout is
//
//	<dir>/<type>/index.json            collection
//	<dir>/<type>/<id>.json             single resource
//	<dir>/<type>/<id>/<relation>.json  related resource(s)
//
// Type directories may use the singular or the plural spelling.
func (f *Fetcher) LoadDir(dir string, s serializer.IDocumentSerializer) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		parts := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), ".json"), "/")
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("unexpected fixture path %s", rel)
		}
		parts[0] = inflection.Singular(parts[0])

		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		doc := &common.Document{}
		if err := s.Deserialize(b, doc); err != nil {
			return fmt.Errorf("fixture %s: %w", rel, err)
		}

		f.documents.Store(key(parts...), doc)
		Logger.Debugf("loaded fixture %s", rel)
		return nil
	})
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IDocumentFetcher)
// --------------------------------------------------------------------------

func (f *Fetcher) Connect(common.ClientConfig) error {
	return nil
}

func (f *Fetcher) FetchDocument(ctx context.Context, typeName, id string, _ *common.FetchOptions) (*common.Document, error) {
	if id == "" {
		id = collectionKey
	}
	return f.fetch(ctx, key(typeName, id))
}

func (f *Fetcher) FetchHasMany(ctx context.Context, typeName, id, relationship string) (*common.Document, error) {
	doc, err := f.fetch(ctx, key(typeName, id, relationship))
	if err != nil {
		return nil, err
	}
	if err := transport.CheckHasMany(doc); err != nil {
		return nil, fmt.Errorf("%w: %s#%s.%s is not a collection", err, typeName, id, relationship)
	}
	return doc, nil
}

func (f *Fetcher) FetchBelongsTo(ctx context.Context, typeName, id, relationship string) (*common.Document, error) {
	doc, err := f.fetch(ctx, key(typeName, id, relationship))
	if err != nil {
		return nil, err
	}
	if err := transport.CheckBelongsTo(doc); err != nil {
		return nil, fmt.Errorf("%w: %s#%s.%s is a collection", err, typeName, id, relationship)
	}
	return doc, nil
}

func (f *Fetcher) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (f *Fetcher) fetch(ctx context.Context, k string) (*common.Document, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	failure := f.failure
	f.mu.RUnlock()
	if failure != nil {
		return nil, failure
	}

	doc, ok := f.documents.Load(k)
	if !ok {
		return nil, fmt.Errorf("%w: %s", transport.ErrDocumentNotFound, k)
	}
	return doc, nil
}

func key(parts ...string) string {
	return path.Join(parts...)
}
