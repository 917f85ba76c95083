package ddpath

import (
	"sort"
	"strings"
)

// pinDigits returns the digits of p with leading zeros removed.
func pinDigits(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		if c := p[i]; '0' <= c && c <= '9' {
			if b.Len() == 0 && c == '0' {
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// PinLess reports whether pin a sorts before pin b.
//
// Pins are ordered by the unsigned integer made of all the digits in their
// name, non-digit characters being ignored: N2 < N10 < G11. Pins with the
// same numeric key are ordered by name.
//
func PinLess(a, b string) bool {
	da, db := pinDigits(a), pinDigits(b)
	if len(da) != len(db) {
		return len(da) < len(db)
	}
	if da != db {
		return da < db
	}
	return a < b
}

// SortPins sorts pins in place according to PinLess.
//
func SortPins(pins []string) {
	sort.Slice(pins, func(i, j int) bool { return PinLess(pins[i], pins[j]) })
}

// a pinSet is a set of pin names.
type pinSet map[string]struct{}

func (s pinSet) has(p string) bool {
	_, ok := s[p]
	return ok
}

func (s pinSet) sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPins(out)
	return out
}
