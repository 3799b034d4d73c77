package normalizer

import (
	"fmt"
	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/lib/store"
	"github.com/ValentinKolb/japi/rpc/common"
)

// Normalizer turns wire resources into canonical records of a record store.
// It does not lock anything itself: callers must serialize calls that work on
// the same store (the datastore does this with its own mutex).
type Normalizer struct {
	registry *model.Registry
	records  store.IRecordStore
}

// Result holds the outcome of a committed normalization.
type Result struct {
	// Records are the canonical records of the primary resources, in input order.
	Records []*store.Record
	// Changes lists every record that was created or updated, one entry per record.
	// They have not been published yet.
	Changes []store.Change
}

// New creates a normalizer writing into records. Every type of the registry
// must be known to the record store.
func New(registry *model.Registry, records store.IRecordStore) *Normalizer {
	return &Normalizer{
		registry: registry,
		records:  records,
	}
}

// --------------------------------------------------------------------------
// Public API
// --------------------------------------------------------------------------

// Normalize merges the included resources and then the primary resources into
// the record store and wires the relationships of the primary resources.
//
// Every resource and every linkage identifier is resolved before the store is
// touched. If anything fails to resolve (unknown type, missing id, a linked
// record that is neither part of the document nor cached) an error is returned
// and the store is left exactly as it was.
func (n *Normalizer) Normalize(primary, included []common.Resource) (*Result, error) {
	b := n.newBatch(store.StateFetched)

	for _, res := range included {
		if _, err := b.stage(res); err != nil {
			return nil, err
		}
	}

	entries := make([]*entry, 0, len(primary))
	for _, res := range primary {
		e, err := b.stage(res)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	for i, res := range primary {
		if err := b.linkResource(entries[i], res); err != nil {
			return nil, err
		}
	}

	changes, err := b.commit()
	if err != nil {
		return nil, err
	}
	return &Result{Records: recordsOf(entries), Changes: changes}, nil
}

// NormalizeDocument normalizes the primary data and the included resources of doc.
func (n *Normalizer) NormalizeDocument(doc *common.Document) (*Result, error) {
	if doc == nil {
		return nil, store.NewError(store.RetCInvalidDocument, "nil document")
	}
	return n.Normalize(doc.Data.Resources(), doc.Included)
}

// Assign normalizes a relationship document (the answer to a related resource
// request) and assigns its primary data to the relationship name of owner, in
// one commit. A to-many relationship accepts a collection, a single resource or
// null (empty list); a to-one relationship rejects collections.
//
// The relationship must be declared on the owner's model, otherwise an error
// matching store.ErrNoSuchRelationship is returned.
func (n *Normalizer) Assign(owner *store.Record, name string, doc *common.Document) (*Result, error) {
	if owner == nil || doc == nil {
		return nil, store.NewError(store.RetCInvalidDocument, "nil owner or document")
	}
	m, err := n.registry.Model(owner.Type())
	if err != nil {
		return nil, err
	}
	target, kind, ok := m.Relationship(name)
	if !ok {
		return nil, store.NewErrorf(store.RetCNoSuchRelationship, "%s.%s", owner.Type(), name)
	}
	if kind == model.RelationBelongsTo && doc.Data.IsCollection() {
		return nil, store.NewErrorf(store.RetCInvalidDocument, "%s.%s: collection for a to-one relationship", owner.Type(), name)
	}

	b := n.newBatch(store.StateFetched)
	ownerEntry, err := b.owner(m, owner)
	if err != nil {
		return nil, err
	}

	for _, res := range doc.Included {
		if _, err := b.stage(res); err != nil {
			return nil, err
		}
	}

	primary := doc.Data.Resources()
	entries := make([]*entry, 0, len(primary))
	for _, res := range primary {
		e, err := b.stage(res)
		if err != nil {
			return nil, err
		}
		if e.model.Name() != target {
			return nil, store.NewErrorf(store.RetCInvalidDocument, "%s.%s: expected %s resources, got %s#%s", owner.Type(), name, target, e.model.Name(), res.ID)
		}
		entries = append(entries, e)
	}
	for i, res := range primary {
		if err := b.linkResource(entries[i], res); err != nil {
			return nil, err
		}
	}

	b.links = append(b.links, link{owner: ownerEntry, name: name, kind: kind, targets: entries})

	changes, err := b.commit()
	if err != nil {
		return nil, err
	}
	return &Result{Records: recordsOf(entries), Changes: changes}, nil
}

// Upsert creates the record (type of m, id) in the given state, or merges into
// the existing one. Props naming a declared relationship are assigned as links:
// a to-one relationship takes a *store.Record (or nil), a to-many relationship
// a []*store.Record. Linked records are resolved by id to the canonical
// instances of the store (or of the same call), a record that is not part of
// the store fails with an error matching store.ErrRecordNotFound. All other
// props are merged as attributes. An "id" prop is ignored.
func (n *Normalizer) Upsert(m *model.Model, id string, props map[string]any, state store.State) (*Result, error) {
	typeName, err := n.registry.TypeOf(m)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, store.NewErrorf(store.RetCInvalidDocument, "%s: empty id", typeName)
	}

	b := n.newBatch(state)
	e, err := b.entry(m, id)
	if err != nil {
		return nil, err
	}

	attrs := make(map[string]any, len(props))
	for key, value := range props {
		if key == "id" {
			continue
		}
		target, kind, ok := m.Relationship(key)
		if !ok {
			attrs[key] = value
			continue
		}
		if store.IsUndefined(value) {
			continue
		}
		recs, err := linkValue(typeName, key, target, kind, value)
		if err != nil {
			return nil, err
		}
		targets := make([]*entry, 0, len(recs))
		for _, rec := range recs {
			t, err := b.resolve(target, common.Identifier{Type: target, ID: rec.ID()})
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", typeName, key, err)
			}
			targets = append(targets, t)
		}
		b.links = append(b.links, link{owner: e, name: key, kind: kind, targets: targets})
	}
	e.attrs = append(e.attrs, attrs)

	changes, err := b.commit()
	if err != nil {
		return nil, err
	}
	return &Result{Records: []*store.Record{e.record}, Changes: changes}, nil
}

// --------------------------------------------------------------------------
// Planning
// --------------------------------------------------------------------------

// entry is one (type, id) touched by a batch.
type entry struct {
	model    *model.Model
	record   *store.Record
	existing bool
	attrs    []map[string]any
}

type link struct {
	owner   *entry
	name    string
	kind    model.RelationKind
	targets []*entry
}

type batch struct {
	n       *Normalizer
	state   store.State
	entries map[string]*entry
	order   []*entry
	links   []link
}

func (n *Normalizer) newBatch(state store.State) *batch {
	return &batch{
		n:       n,
		state:   state,
		entries: make(map[string]*entry),
	}
}

// entry returns the batch entry for (type of m, id), looking up the store the first time.
func (b *batch) entry(m *model.Model, id string) (*entry, error) {
	key := m.Name() + "#" + id
	if e, ok := b.entries[key]; ok {
		return e, nil
	}

	records, err := b.n.records.Records(m.Name())
	if err != nil {
		return nil, err
	}

	e := &entry{model: m}
	if rec, ok := records.Get(id); ok {
		e.record = rec
		e.existing = true
	} else {
		e.record = store.NewRecord(m.Name(), id, b.state)
	}
	b.entries[key] = e
	b.order = append(b.order, e)
	return e, nil
}

// owner registers rec as the owner of a relationship assignment. If rec is not
// part of the store anymore (e.g. after an unload) it is inserted again.
func (b *batch) owner(m *model.Model, rec *store.Record) (*entry, error) {
	e, err := b.entry(m, rec.ID())
	if err != nil {
		return nil, err
	}
	if !e.existing {
		e.record = rec
	}
	return e, nil
}

// stage resolves the model of a resource and queues its attributes.
func (b *batch) stage(res common.Resource) (*entry, error) {
	m, err := b.n.registry.Resolve(res.Type)
	if err != nil {
		return nil, fmt.Errorf("resource %s/%s: %w", res.Type, res.ID, err)
	}
	if res.ID == "" {
		return nil, store.NewErrorf(store.RetCInvalidDocument, "resource of type %q without id", res.Type)
	}
	e, err := b.entry(m, res.ID)
	if err != nil {
		return nil, err
	}
	if res.Attributes != nil {
		e.attrs = append(e.attrs, res.Attributes)
	}
	return e, nil
}

// linkResource queues the relationship linkage of a staged resource.
// Undeclared relationships and relationships without linkage data are ignored.
func (b *batch) linkResource(owner *entry, res common.Resource) error {
	for name, rel := range res.Relationships {
		target, kind, ok := owner.model.Relationship(name)
		if !ok {
			continue
		}

		ids, many, present, err := rel.Linkage()
		if err != nil {
			return store.NewErrorf(store.RetCInvalidDocument, "%s.%s: %v", owner.record, name, err)
		}
		if !present {
			continue
		}
		if many && kind == model.RelationBelongsTo {
			return store.NewErrorf(store.RetCInvalidDocument, "%s.%s: array linkage for a to-one relationship", owner.record, name)
		}

		targets := make([]*entry, 0, len(ids))
		for _, id := range ids {
			t, err := b.resolve(target, id)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", owner.record, name, err)
			}
			targets = append(targets, t)
		}
		b.links = append(b.links, link{owner: owner, name: name, kind: kind, targets: targets})
	}
	return nil
}

// resolve finds the record an identifier points to: a resource of the same
// batch or a cached record of the declared target type.
func (b *batch) resolve(target string, id common.Identifier) (*entry, error) {
	if e, ok := b.entries[target+"#"+id.ID]; ok {
		return e, nil
	}
	m, err := b.n.registry.Model(target)
	if err != nil {
		return nil, err
	}
	records, err := b.n.records.Records(target)
	if err != nil {
		return nil, err
	}
	if _, ok := records.Get(id.ID); !ok {
		return nil, store.NewErrorf(store.RetCRecordNotFound, "%s#%s", target, id.ID)
	}
	return b.entry(m, id.ID)
}

// --------------------------------------------------------------------------
// Commit
// --------------------------------------------------------------------------

// commit writes the planned batch into the store. Nothing can fail for a
// resolved batch except a store that does not know a type of the registry.
func (b *batch) commit() ([]store.Change, error) {
	touched := make(map[*entry]bool)

	for _, e := range b.order {
		accept := e.model.AcceptsAttribute
		if !e.existing {
			for _, attrs := range e.attrs {
				e.record.Merge(attrs, accept)
			}
			canonical, inserted, err := b.n.records.Insert(e.record)
			if err != nil {
				return nil, err
			}
			if inserted {
				continue
			}
			// inserted by someone else in the meantime
			e.record = canonical
			e.existing = true
		}
		for _, attrs := range e.attrs {
			if e.record.Merge(attrs, accept) {
				touched[e] = true
			}
		}
	}

	for _, l := range b.links {
		switch l.kind {
		case model.RelationHasMany:
			l.owner.record.SetHasMany(l.name, recordsOf(l.targets))
		case model.RelationBelongsTo:
			var target *store.Record
			if len(l.targets) > 0 {
				target = l.targets[0].record
			}
			l.owner.record.SetBelongsTo(l.name, target)
		}
		touched[l.owner] = true
	}

	changes := make([]store.Change, 0, len(b.order))
	for _, e := range b.order {
		kind := store.ChangeCreated
		if e.existing {
			if !touched[e] {
				continue
			}
			e.record.Touch()
			kind = store.ChangeUpdated
		}
		changes = append(changes, store.Change{Kind: kind, Type: e.record.Type(), ID: e.record.ID(), Record: e.record})
	}
	return changes, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func recordsOf(entries []*entry) []*store.Record {
	recs := make([]*store.Record, len(entries))
	for i, e := range entries {
		recs[i] = e.record
	}
	return recs
}

// linkValue converts a relationship prop of Upsert into the linked records.
func linkValue(typeName, name, target string, kind model.RelationKind, value any) ([]*store.Record, error) {
	var recs []*store.Record
	switch v := value.(type) {
	case nil:
	case *store.Record:
		if kind == model.RelationHasMany {
			return nil, store.NewErrorf(store.RetCInvalidDocument, "%s.%s: single record for a to-many relationship", typeName, name)
		}
		if v != nil {
			recs = []*store.Record{v}
		}
	case []*store.Record:
		if kind == model.RelationBelongsTo {
			return nil, store.NewErrorf(store.RetCInvalidDocument, "%s.%s: records for a to-one relationship", typeName, name)
		}
		recs = v
	default:
		return nil, store.NewErrorf(store.RetCInvalidDocument, "%s.%s: unexpected value of type %T", typeName, name, value)
	}

	for _, rec := range recs {
		if rec == nil || rec.Type() != target {
			return nil, store.NewErrorf(store.RetCInvalidDocument, "%s.%s: expected a %s record, got %v", typeName, name, target, rec)
		}
	}
	return recs, nil
}
