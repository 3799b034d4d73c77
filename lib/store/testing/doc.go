// Package testing provides standardised tests and benchmarks for record store
// implementations that satisfy the store.IRecordStore interface.
//
// The package contains:
//   - RunRecordStoreTests: A test suite validating conformance to the IRecordStore
//     contract (identity, unknown types, bulk unload, observers, concurrent inserts)
//   - RunRecordStoreBenchmarks: Performance tests for inserts and lookups
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func(registry *model.Registry) store.IRecordStore {
//		return NewMyStore(registry)
//	}
//
//	// Running the standard test suite
//	storetesting.RunRecordStoreTests(t, "MyStore", factory)
//
//	// Running performance benchmarks
//	storetesting.RunRecordStoreBenchmarks(b, "MyStore", factory)
package testing
