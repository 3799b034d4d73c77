// Package cmd implements the command-line interface of japi, a client-side
// record store for JSON:API services. It provides a hierarchical command
// structure for fetching records and for serving fixtures.
//
// The package is organized into several subpackages:
//
//   - records: Commands that fetch and normalize records (all, get, related, create, models)
//   - serve: Command serving a fixtures directory as a read-only JSON:API service
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See japi -help for a list of all commands.
package cmd
