package mstore

import (
	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
	"slices"
	"sync"
	"sync/atomic"
)

type storeImpl struct {
	mu        sync.RWMutex
	types     map[string]*store.TypeMap
	observers *xsync.MapOf[uint64, store.Observer]
	nextID    atomic.Uint64
}

// NewMemoryStore creates a new in-memory record store with one empty mapping
// per model of the registry. The set of types is fixed after creation.
func NewMemoryStore(registry *model.Registry) store.IRecordStore {
	s := &storeImpl{
		types:     make(map[string]*store.TypeMap),
		observers: xsync.NewMapOf[uint64, store.Observer](),
	}
	for _, name := range registry.Names() {
		s.types[name] = store.NewTypeMap(name)
	}
	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Records(typeName string) (*store.TypeMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.types[typeName]
	if !ok {
		return nil, store.NewErrorf(store.RetCUnknownModel, "%q", typeName)
	}
	return m, nil
}

func (s *storeImpl) Record(m *store.TypeMap, id string) (*store.Record, error) {
	if m == nil {
		return nil, store.NewError(store.RetCInternalError, "nil record mapping")
	}
	rec, ok := m.Get(id)
	if !ok {
		return nil, store.NewErrorf(store.RetCRecordNotFound, "%s#%s", m.Type(), id)
	}
	return rec, nil
}

func (s *storeImpl) Lookup(typeName, id string) (*store.Record, error) {
	m, err := s.Records(typeName)
	if err != nil {
		return nil, err
	}
	return s.Record(m, id)
}

func (s *storeImpl) Insert(rec *store.Record) (*store.Record, bool, error) {
	m, err := s.Records(rec.Type())
	if err != nil {
		return nil, false, err
	}
	actual, loaded := m.LoadOrStore(rec)
	return actual, !loaded, nil
}

func (s *storeImpl) Len(typeName string) int {
	m, err := s.Records(typeName)
	if err != nil {
		return 0
	}
	return m.Len()
}

func (s *storeImpl) UnloadAll() {
	// swap every mapping while holding the write lock, so no reader sees
	// some types cleared and others not
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.types {
		s.types[name] = store.NewTypeMap(name)
	}
}

func (s *storeImpl) Subscribe(o store.Observer) func() {
	id := s.nextID.Add(1)
	s.observers.Store(id, o)
	return func() {
		s.observers.Delete(id)
	}
}

func (s *storeImpl) Publish(changes ...store.Change) {
	if len(changes) == 0 || s.observers.Size() == 0 {
		return
	}

	// deliver in subscription order
	ids := make([]uint64, 0, s.observers.Size())
	s.observers.Range(func(id uint64, _ store.Observer) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)

	for _, c := range changes {
		for _, id := range ids {
			if o, ok := s.observers.Load(id); ok {
				o.OnChange(c)
			}
		}
	}
}

