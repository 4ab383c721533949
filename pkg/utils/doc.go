// Package utils provides utility functions for the zepgraph library.
//
// This package contains helper functions for various operations including:
//   - Date and time utilities (datetime.go)
//   - Data validation functions (validation.go)
//   - Concurrent execution helpers (concurrent.go)
//   - Bulk processing utilities (bulk.go)
//   - General helper functions (helpers.go)
//
// The utilities are designed to support the core zepgraph operations while providing
// Go-idiomatic implementations of the Python zepgraph_core.helpers and zepgraph_core.utils modules.
package utils
