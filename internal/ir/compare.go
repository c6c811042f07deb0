package ir

import (
	"cmp"
	"strings"
)

// CompareValues orders two scalar values of the same kind.
//
// Returns (-1|0|1, true) when a and b are comparable, (0, false) otherwise.
// Comparable pairs:
//   - IRInt with IRInt (numeric order)
//   - IRString with IRString (byte order, matching SQLite BINARY collation)
//   - IRBool with IRBool (false < true)
//   - IRNull with IRNull (always equal)
//
// Arrays, objects and mixed kinds are never comparable.
func CompareValues(a, b IRValue) (int, bool) {
	switch av := a.(type) {
	case IRInt:
		if bv, ok := b.(IRInt); ok {
			return cmp.Compare(av, bv), true
		}
	case IRString:
		if bv, ok := b.(IRString); ok {
			return strings.Compare(string(av), string(bv)), true
		}
	case IRBool:
		if bv, ok := b.(IRBool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv)), true
		}
	case IRNull:
		if _, ok := b.(IRNull); ok {
			return 0, true
		}
	}
	return 0, false
}

func boolRank(b IRBool) int {
	if b {
		return 1
	}
	return 0
}
