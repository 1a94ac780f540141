// Package contact defines the address book entry and the name filter
// shared by the loader, the picker, and the plain listing.
package contact

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Contact is a single address book row. Name or PhoneNumber may be empty
// when the source row had no value; such rows are passed through as-is.
type Contact struct {
	Name        string `yaml:"name"`
	PhoneNumber string `yaml:"phone"`
}

// Filter returns the contacts whose name contains query, ignoring case,
// in the order they appear in full. An empty query returns a copy of full.
// The result is never nil.
func Filter(full []Contact, query string) []Contact {
	if query == "" {
		return append(make([]Contact, 0, len(full)), full...)
	}

	needle := strings.ToLower(query)
	out := make([]Contact, 0, len(full))
	for _, c := range full {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// maxSuggestDistance caps how far a suggestion may be from the query.
const maxSuggestDistance = 3

// Suggest returns the name in full closest to query by edit distance,
// comparing against each name's leading len(query) runes so that a typo in
// a prefix still finds the contact. The allowed distance grows with the
// query length (half of it, at most maxSuggestDistance). Swapping two
// adjacent letters counts as a single edit. Returns "" when nothing is
// close enough.
func Suggest(full []Contact, query string) string {
	needle := []rune(strings.ToLower(query))
	limit := min(len(needle)/2, maxSuggestDistance)
	if limit == 0 {
		return ""
	}

	best := ""
	bestDist := limit + 1
	for _, c := range full {
		name := []rune(strings.ToLower(c.Name))
		if len(name) == 0 {
			continue
		}
		if len(name) > len(needle) {
			name = name[:len(needle)]
		}
		d := levenshtein.ComputeDistance(string(needle), string(name))
		if d == 2 && isTransposition(needle, name) {
			d = 1
		}
		if d < bestDist {
			best = c.Name
			bestDist = d
		}
	}
	return best
}

// isTransposition reports whether a and b differ only by one swap of
// adjacent runes.
func isTransposition(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if i+1 >= len(a) || a[i] != b[i+1] || a[i+1] != b[i] {
		return false
	}
	return slices.Equal(a[i+2:], b[i+2:])
}
