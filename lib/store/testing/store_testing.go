package testing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RecordStoreFactory is a function that creates a new instance of an IRecordStore
// implementation for the models of the registry
type RecordStoreFactory func(registry *model.Registry) store.IRecordStore

// RunRecordStoreTests runs a comprehensive test suite for an IRecordStore implementation.
func RunRecordStoreTests(t *testing.T, name string, factory RecordStoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Records", func(t *testing.T) {
			testRecords(t, factory(testRegistry(t)))
		})

		t.Run("Insert", func(t *testing.T) {
			testInsert(t, factory(testRegistry(t)))
		})

		t.Run("Lookup", func(t *testing.T) {
			testLookup(t, factory(testRegistry(t)))
		})

		t.Run("UnloadAll", func(t *testing.T) {
			testUnloadAll(t, factory(testRegistry(t)))
		})

		t.Run("Observers", func(t *testing.T) {
			testObservers(t, factory(testRegistry(t)))
		})

		t.Run("ConcurrentInsert", func(t *testing.T) {
			testConcurrentInsert(t, factory(testRegistry(t)))
		})
	})
}

// RunRecordStoreBenchmarks runs performance tests for an IRecordStore implementation.
func RunRecordStoreBenchmarks(b *testing.B, name string, factory RecordStoreFactory) {
	registry, err := model.NewRegistry(model.New("person"))
	if err != nil {
		b.Fatal(err)
	}

	b.Run(name+"/Insert", func(b *testing.B) {
		s := factory(registry)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _, _ = s.Insert(store.NewRecord("person", fmt.Sprintf("%d", i), store.StateFetched))
		}
	})

	b.Run(name+"/Lookup", func(b *testing.B) {
		s := factory(registry)
		for i := 0; i < 1000; i++ {
			_, _, _ = s.Insert(store.NewRecord("person", fmt.Sprintf("%d", i), store.StateFetched))
		}
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			i := 0
			for pb.Next() {
				_, _ = s.Lookup("person", fmt.Sprintf("%d", i%1000))
				i++
			}
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func testRegistry(t *testing.T) *model.Registry {
	registry, err := model.NewRegistry(
		model.New("article", model.WithBelongsTo("author", "person")),
		model.New("person"),
	)
	require.NoError(t, err)
	return registry
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testRecords(t *testing.T, s store.IRecordStore) {
	people, err := s.Records("person")
	require.NoError(t, err)
	assert.Equal(t, "person", people.Type())
	assert.Zero(t, people.Len())

	// unknown types are an error, not an empty mapping
	_, err = s.Records("tag")
	assert.ErrorIs(t, err, store.ErrUnknownModel)
	assert.Zero(t, s.Len("tag"))
}

func testInsert(t *testing.T, s store.IRecordStore) {
	rec := store.NewRecord("person", "9", store.StateFetched)
	canonical, inserted, err := s.Insert(rec)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Same(t, rec, canonical)

	// a second instance for the same (type, id) is not stored
	duplicate := store.NewRecord("person", "9", store.StateCreated)
	canonical, inserted, err = s.Insert(duplicate)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Same(t, rec, canonical)
	assert.Equal(t, 1, s.Len("person"))

	// the same id in another type is a different record
	_, inserted, err = s.Insert(store.NewRecord("article", "9", store.StateFetched))
	require.NoError(t, err)
	assert.True(t, inserted)

	_, _, err = s.Insert(store.NewRecord("tag", "1", store.StateFetched))
	assert.ErrorIs(t, err, store.ErrUnknownModel)
}

func testLookup(t *testing.T, s store.IRecordStore) {
	rec := store.NewRecord("person", "9", store.StateFetched)
	_, _, err := s.Insert(rec)
	require.NoError(t, err)

	people, err := s.Records("person")
	require.NoError(t, err)

	found, err := s.Record(people, "9")
	require.NoError(t, err)
	assert.Same(t, rec, found)

	found, err = s.Lookup("person", "9")
	require.NoError(t, err)
	assert.Same(t, rec, found)

	_, err = s.Record(people, "10")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = s.Lookup("tag", "9")
	assert.ErrorIs(t, err, store.ErrUnknownModel)

	assert.Equal(t, []string{"9"}, people.IDs())
}

func testUnloadAll(t *testing.T, s store.IRecordStore) {
	for i := 0; i < 10; i++ {
		_, _, err := s.Insert(store.NewRecord("person", fmt.Sprintf("%d", i), store.StateFetched))
		require.NoError(t, err)
		_, _, err = s.Insert(store.NewRecord("article", fmt.Sprintf("%d", i), store.StateFetched))
		require.NoError(t, err)
	}
	old, err := s.Lookup("person", "1")
	require.NoError(t, err)

	s.UnloadAll()
	assert.Zero(t, s.Len("person"))
	assert.Zero(t, s.Len("article"))

	// types stay registered
	people, err := s.Records("person")
	require.NoError(t, err)
	assert.Zero(t, people.Len())

	// a new instance becomes canonical
	rec := store.NewRecord("person", "1", store.StateFetched)
	canonical, inserted, err := s.Insert(rec)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Same(t, rec, canonical)
	assert.NotSame(t, old, canonical)
}

func testObservers(t *testing.T, s store.IRecordStore) {
	var order []string
	first := s.Subscribe(store.ObserverFunc(func(c store.Change) {
		order = append(order, "first:"+c.Kind.String())
	}))
	second := s.Subscribe(store.ObserverFunc(func(c store.Change) {
		order = append(order, "second:"+c.Kind.String())
	}))

	// mutations alone don't notify
	_, _, err := s.Insert(store.NewRecord("person", "9", store.StateFetched))
	require.NoError(t, err)
	s.UnloadAll()
	assert.Empty(t, order)

	s.Publish(
		store.Change{Kind: store.ChangeCreated, Type: "person", ID: "9"},
		store.Change{Kind: store.ChangeUnloaded},
	)
	assert.Equal(t, []string{"first:created", "second:created", "first:unloaded", "second:unloaded"}, order)

	first()
	order = nil
	s.Publish(store.Change{Kind: store.ChangeUpdated})
	assert.Equal(t, []string{"second:updated"}, order)

	second()
	order = nil
	s.Publish(store.Change{Kind: store.ChangeUpdated})
	assert.Empty(t, order)
}

func testConcurrentInsert(t *testing.T, s store.IRecordStore) {
	const workers = 32
	results := make([]*store.Record, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			canonical, _, err := s.Insert(store.NewRecord("person", "9", store.StateFetched))
			if err == nil {
				results[i] = canonical
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	for _, rec := range results {
		assert.Same(t, results[0], rec)
	}
	assert.Equal(t, 1, s.Len("person"))
}
