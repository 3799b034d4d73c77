package model

import (
	"github.com/ValentinKolb/japi/lib/store"
	"sort"
)

// RelationKind is the cardinality of a declared relationship.
type RelationKind uint8

const (
	RelationNone      RelationKind = iota // not declared
	RelationHasMany                       // to-many
	RelationBelongsTo                     // to-one
)

func (k RelationKind) String() string {
	switch k {
	case RelationHasMany:
		return "hasMany"
	case RelationBelongsTo:
		return "belongsTo"
	default:
		return "none"
	}
}

// Model is the definition of one record type: its singular type name, the
// attribute names it accepts and its declared relationships.
// A Model is immutable once it was created with New.
type Model struct {
	name       string
	attributes map[string]struct{}
	hasMany    map[string]string
	belongsTo  map[string]string
}

// Option configures a Model in New.
type Option func(m *Model)

// WithAttributes declares the attribute names of the model. Attributes that are
// not declared are dropped during normalization. Without this option every
// attribute is accepted.
func WithAttributes(names ...string) Option {
	return func(m *Model) {
		if m.attributes == nil {
			m.attributes = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			m.attributes[name] = struct{}{}
		}
	}
}

// WithHasMany declares a to-many relationship to the target type.
func WithHasMany(name, target string) Option {
	return func(m *Model) {
		m.hasMany[name] = target
	}
}

// WithBelongsTo declares a to-one relationship to the target type.
func WithBelongsTo(name, target string) Option {
	return func(m *Model) {
		m.belongsTo[name] = target
	}
}

// New creates a model definition with the given singular type name.
func New(name string, opts ...Option) *Model {
	m := &Model{
		name:      name,
		hasMany:   make(map[string]string),
		belongsTo: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the singular type name.
func (m *Model) Name() string {
	return m.name
}

// Attributes returns the declared attribute names in ascending order,
// or nil if the model accepts any attribute.
func (m *Model) Attributes() []string {
	if m.attributes == nil {
		return nil
	}
	names := make([]string, 0, len(m.attributes))
	for name := range m.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AcceptsAttribute reports whether name may be stored on records of this model.
func (m *Model) AcceptsAttribute(name string) bool {
	if m.attributes == nil {
		return true
	}
	_, ok := m.attributes[name]
	return ok
}

// HasMany returns a copy of the to-many declarations (name -> target type).
func (m *Model) HasMany() map[string]string {
	return copyMap(m.hasMany)
}

// BelongsTo returns a copy of the to-one declarations (name -> target type).
func (m *Model) BelongsTo() map[string]string {
	return copyMap(m.belongsTo)
}

// Relationship looks up a declared relationship by name.
func (m *Model) Relationship(name string) (target string, kind RelationKind, ok bool) {
	if target, ok := m.hasMany[name]; ok {
		return target, RelationHasMany, true
	}
	if target, ok := m.belongsTo[name]; ok {
		return target, RelationBelongsTo, true
	}
	return "", RelationNone, false
}

// validate checks the definition on its own (targets are checked by the registry).
func (m *Model) validate() error {
	if m == nil {
		return store.NewError(store.RetCInvalidModel, "nil model")
	}
	if m.name == "" {
		return store.NewError(store.RetCInvalidModel, "empty type name")
	}
	for name := range m.hasMany {
		if _, ok := m.belongsTo[name]; ok {
			return store.NewErrorf(store.RetCInvalidModel, "%s: relationship %q declared as hasMany and belongsTo", m.name, name)
		}
	}
	for name := range m.attributes {
		if _, _, ok := m.Relationship(name); ok {
			return store.NewErrorf(store.RetCInvalidModel, "%s: %q declared as attribute and relationship", m.name, name)
		}
	}
	return nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
