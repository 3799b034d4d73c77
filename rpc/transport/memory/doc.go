// Package memory implements a document fetcher that serves documents from memory.
//
// Documents are registered with PutCollection, PutDocument and PutRelated, or
// loaded from a fixtures directory with LoadDir. Every fetch is counted (Calls),
// and FailWith injects transport failures. The record store tests use it to
// verify when the network is hit; the command line tool uses it for offline
// work with the --fixtures flag.
package memory
