package store

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IRecordStore is the identity map holding one canonical Record per (type, id).
// Each registered type owns one TypeMap. Mutating methods never notify observers
// on their own; the caller publishes the collected changes once it has released
// its own locks (see Publish).
type IRecordStore interface {
	// Records returns the live mapping for a type. An error with code RetCUnknownModel
	// is returned if the type was never registered, which is different from an empty map.
	Records(typeName string) (*TypeMap, error)
	// Record returns the record with the given id from the mapping or an error with
	// code RetCRecordNotFound.
	Record(m *TypeMap, id string) (*Record, error)
	// Lookup is a shorthand for Records followed by Record.
	Lookup(typeName, id string) (*Record, error)
	// Insert stores the record if no record with the same (type, id) exists.
	// It returns the canonical instance and whether rec itself was inserted.
	Insert(rec *Record) (canonical *Record, inserted bool, err error)
	// Len returns the number of records of a type (0 for unknown types).
	Len(typeName string) int
	// UnloadAll clears the mappings of every type at once.
	UnloadAll()
	// Subscribe registers an observer. The returned function removes it again.
	Subscribe(o Observer) (unsubscribe func())
	// Publish delivers changes to all observers, synchronously and in order.
	Publish(changes ...Change)
}

// --------------------------------------------------------------------------
// Observers
// --------------------------------------------------------------------------

// ChangeKind describes what happened to a record.
type ChangeKind uint8

const (
	ChangeCreated  ChangeKind = iota // a new canonical record was inserted
	ChangeUpdated                    // attributes or relationships of an existing record changed
	ChangeUnloaded                   // all records were removed from the store
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Change is a single notification delivered to observers.
// Type, ID and Record are empty for ChangeUnloaded.
type Change struct {
	Kind   ChangeKind
	Type   string
	ID     string
	Record *Record
}

// Observer receives change notifications from a record store.
type Observer interface {
	OnChange(c Change)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(c Change)

// OnChange calls f(c).
func (f ObserverFunc) OnChange(c Change) {
	f(c)
}
