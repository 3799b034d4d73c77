package model

import (
	"github.com/ValentinKolb/japi/lib/store"
	"github.com/jinzhu/inflection"
	"sort"
	"strings"
)

// Aliases of the store sentinels, so callers of the registry don't need to import store.
var (
	ErrUnknownModel   = store.ErrUnknownModel
	ErrInvalidModel   = store.ErrInvalidModel
	ErrDuplicateModel = store.ErrDuplicateModel
)

// Registry maps type names to model definitions and back.
// It is filled once by NewRegistry and read-only afterwards.
type Registry struct {
	byName  map[string]*Model
	byModel map[*Model]string
}

// NewRegistry registers every model exactly once. All relationship targets
// must name a model that is part of the same registry.
func NewRegistry(models ...*Model) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*Model, len(models)),
		byModel: make(map[*Model]string, len(models)),
	}

	for _, m := range models {
		if err := m.validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byName[m.name]; ok {
			return nil, store.NewErrorf(store.RetCDuplicateModel, "%q", m.name)
		}
		r.byName[m.name] = m
		r.byModel[m] = m.name
	}

	// check relationship targets once all models are known
	for _, m := range models {
		for _, rels := range []map[string]string{m.hasMany, m.belongsTo} {
			for name, target := range rels {
				if _, ok := r.byName[target]; !ok {
					return nil, store.NewErrorf(store.RetCUnknownModel, "%s.%s targets %q", m.name, name, target)
				}
			}
		}
	}

	return r, nil
}

// Model returns the model registered under the type name.
func (r *Registry) Model(typeName string) (*Model, error) {
	m, ok := r.byName[typeName]
	if !ok {
		return nil, store.NewErrorf(store.RetCUnknownModel, "%q", typeName)
	}
	return m, nil
}

// TypeOf returns the type name of a registered model.
func (r *Registry) TypeOf(m *Model) (string, error) {
	name, ok := r.byModel[m]
	if !ok {
		if m == nil {
			return "", store.NewError(store.RetCUnknownModel, "nil model")
		}
		return "", store.NewErrorf(store.RetCUnknownModel, "model %q is not registered", m.name)
	}
	return name, nil
}

// HasMany returns the to-many declarations of a registered model.
func (r *Registry) HasMany(m *Model) (map[string]string, error) {
	if _, err := r.TypeOf(m); err != nil {
		return nil, err
	}
	return m.HasMany(), nil
}

// BelongsTo returns the to-one declarations of a registered model.
func (r *Registry) BelongsTo(m *Model) (map[string]string, error) {
	if _, err := r.TypeOf(m); err != nil {
		return nil, err
	}
	return m.BelongsTo(), nil
}

// Resolve finds the model for a type as it is spelled on the wire. JSON:API
// services usually use plural type names ("articles", "people"), while models
// are registered with the singular name. Both spellings are accepted.
func (r *Registry) Resolve(wireType string) (*Model, error) {
	if m, ok := r.byName[wireType]; ok {
		return m, nil
	}
	if m, ok := r.byName[inflection.Singular(wireType)]; ok {
		return m, nil
	}
	if m, ok := r.byName[strings.ToLower(inflection.Singular(wireType))]; ok {
		return m, nil
	}
	return nil, store.NewErrorf(store.RetCUnknownModel, "%q", wireType)
}

// Names returns all registered type names in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns all registered models ordered by type name.
func (r *Registry) Models() []*Model {
	names := r.Names()
	models := make([]*Model, len(names))
	for i, name := range names {
		models[i] = r.byName[name]
	}
	return models
}
