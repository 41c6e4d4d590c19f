// Package sentinel holds the infrastructure errors stores and caches return,
// optionally wrapped. Services translate them into coded domain errors;
// input problems never use these.
package sentinel

import "errors"

var (
	// ErrNotFound: no such row or cache entry.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness constraint (VAT number, subscriber email)
	// would be violated.
	ErrConflict = errors.New("conflict")
)
