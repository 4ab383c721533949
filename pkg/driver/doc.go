// Package driver provides graph database driver implementations for zepgraph.
//
// This package defines the GraphDriver interface and provides implementations
// for Neo4j and Ladybug.
//
// # Supported Databases
//
// The following graph databases have a driver in this package:
//   - Neo4j: Full-featured graph database with native vector search
//   - Ladybug: Embedded graph database (requires CGO)
//
// GraphProviderMemgraph, GraphProviderFalkorDB and GraphProviderNeptune are
// provider identifiers only; graph_queries.go also emits FalkorDB query syntax,
// but the package has no Memgraph, FalkorDB or Neptune driver.
//
// # Usage
//
// Create a driver using the appropriate constructor:
//
//	// Neo4j
//	driver, err := driver.NewNeo4jDriver(uri, username, password, database)
//
//	// Ladybug (embedded)
//	driver, err := driver.NewLadybugDriver(dbPath, maxConcurrentQueries)
//
// # Thread Safety
//
// All driver implementations are safe for concurrent use from multiple goroutines.
// Database connections are managed internally and pooled where appropriate.
//
// # Type Helpers
//
// The package provides safe type conversion helpers in type_helpers.go for
// converting database results to Go types without panicking on type assertion
// failures.
package driver
