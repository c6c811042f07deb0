// Package ir provides the constrained value types used as predicate literals
// and the canonical JSON encoding used to describe and fingerprint predicates.
//
// ir imports nothing internal. Every other internal package may import it.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers (prices are cents)
//   - Null is an explicit value (IRNull), never a Go nil
//   - Canonical JSON sorts object keys by UTF-16 code units and NFC-normalizes strings
package ir
