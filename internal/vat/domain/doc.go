// Package domain contains the pure domain model for VAT verification.
//
// # Subdomain Structure
//
//	vat/domain/
//	├── identifier/  # normalization and per-country structural rules
//	└── history/     # paginated, newest-first window over verification events
//
// # Domain Purity
//
// Nothing below this directory performs I/O, reads the clock or accepts a
// context.Context. Timestamps arrive as parameters from the application layer,
// and every operation is total: invalid identifiers produce an invalid result
// and out-of-range pages are clamped, so neither package returns errors.
package domain
