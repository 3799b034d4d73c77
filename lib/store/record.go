package store

import (
	"sort"
	"sync"
)

// --------------------------------------------------------------------------
// Undefined attribute values
// --------------------------------------------------------------------------

type undefined struct{}

// Undefined marks an attribute value as "no update". Merging a value equal to
// Undefined leaves the current value of the attribute untouched, the same way an
// absent key does. A nil value is a real value and clears the attribute.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// --------------------------------------------------------------------------
// Record State
// --------------------------------------------------------------------------

// State tracks where a record came from.
type State uint8

const (
	StateCreated State = iota // created locally, not confirmed by the server
	StateFetched              // normalized from server data
	StateUpdated              // normalized again after it was created or fetched
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFetched:
		return "fetched"
	case StateUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Record
// --------------------------------------------------------------------------

// Record is the canonical in-memory instance of one (type, id) entity.
// Type and id never change. Attributes and relationships are updated in place,
// so every holder of the pointer observes the latest state.
//
// A relationship that was never populated is absent; BelongsTo and HasMany report
// this with their second return value. Once relationship data arrived, a to-one
// relationship may hold nil and a to-many relationship an empty slice.
type Record struct {
	mu         sync.RWMutex
	typeName   string
	id         string
	state      State
	attributes map[string]any
	toOne      map[string]*Record
	toMany     map[string][]*Record
}

// NewRecord creates a record that is not yet part of any store.
func NewRecord(typeName, id string, state State) *Record {
	return &Record{
		typeName:   typeName,
		id:         id,
		state:      state,
		attributes: make(map[string]any),
		toOne:      make(map[string]*Record),
		toMany:     make(map[string][]*Record),
	}
}

// Type returns the singular type name of the record.
func (r *Record) Type() string { return r.typeName }

// ID returns the record id.
func (r *Record) ID() string { return r.id }

// Ref returns the type-qualified reference of the record (e.g. "article#1").
func (r *Record) Ref() string { return r.typeName + "#" + r.id }

// String implements fmt.Stringer.
func (r *Record) String() string { return r.Ref() }

// State returns the lifecycle state of the record.
func (r *Record) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Attr returns a single attribute value.
func (r *Record) Attr(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.attributes[name]
	return v, ok
}

// Attributes returns a copy of all attributes.
func (r *Record) Attributes() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attrs := make(map[string]any, len(r.attributes))
	for k, v := range r.attributes {
		attrs[k] = v
	}
	return attrs
}

// BelongsTo returns the to-one relationship with the given name.
// The boolean is false if no relationship data was ever assigned.
func (r *Record) BelongsTo(name string) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.toOne[name]
	return rec, ok
}

// HasMany returns a copy of the to-many relationship with the given name, in linkage order.
// The boolean is false if no relationship data was ever assigned.
func (r *Record) HasMany(name string) ([]*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs, ok := r.toMany[name]
	if !ok {
		return nil, false
	}
	out := make([]*Record, len(recs))
	copy(out, recs)
	return out, true
}

// Relationships returns the sorted names of all relationships that hold data.
func (r *Record) Relationships() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.toOne)+len(r.toMany))
	for name := range r.toOne {
		names = append(names, name)
	}
	for name := range r.toMany {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --------------------------------------------------------------------------
// Mutation (used during normalization)
// --------------------------------------------------------------------------

// Merge copies attrs into the record. Undefined values are skipped. If accept is
// not nil, only names for which it returns true are copied.
// It returns true if at least one attribute was written.
func (r *Record) Merge(attrs map[string]any, accept func(name string) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	written := false
	for name, v := range attrs {
		if IsUndefined(v) {
			continue
		}
		if accept != nil && !accept(name) {
			continue
		}
		r.attributes[name] = v
		written = true
	}
	return written
}

// SetBelongsTo assigns a to-one relationship. A nil target marks the relationship
// as loaded but empty.
func (r *Record) SetBelongsTo(name string, target *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toOne[name] = target
}

// SetHasMany assigns a to-many relationship. A nil slice is stored as an empty one.
func (r *Record) SetHasMany(name string, targets []*Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := make([]*Record, len(targets))
	copy(recs, targets)
	r.toMany[name] = recs
}

// Touch moves a created or fetched record into StateUpdated.
func (r *Record) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateUpdated
}
