package store

import (
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
)

// TypeMap is the id -> record mapping of a single type.
type TypeMap struct {
	typeName string
	records  *xsync.MapOf[string, *Record]
}

// NewTypeMap creates an empty mapping for the given type.
func NewTypeMap(typeName string) *TypeMap {
	return &TypeMap{
		typeName: typeName,
		records:  xsync.NewMapOf[string, *Record](),
	}
}

// Type returns the type name the mapping belongs to.
func (m *TypeMap) Type() string {
	return m.typeName
}

// Get returns the record with the given id.
func (m *TypeMap) Get(id string) (*Record, bool) {
	return m.records.Load(id)
}

// Len returns the number of records in the mapping.
func (m *TypeMap) Len() int {
	return m.records.Size()
}

// Range calls fn for every record until fn returns false. The order is unspecified.
func (m *TypeMap) Range(fn func(id string, rec *Record) bool) {
	m.records.Range(fn)
}

// IDs returns all ids in ascending order.
func (m *TypeMap) IDs() []string {
	ids := make([]string, 0, m.records.Size())
	m.records.Range(func(id string, _ *Record) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

// LoadOrStore inserts rec unless a record with the same id exists.
// It returns the canonical record and whether it was already present.
// Use IRecordStore.Insert instead of calling this directly.
func (m *TypeMap) LoadOrStore(rec *Record) (actual *Record, loaded bool) {
	return m.records.LoadOrStore(rec.ID(), rec)
}
