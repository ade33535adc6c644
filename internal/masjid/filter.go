package masjid

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter returns the entries whose name or address contains query, ignoring case.
// An empty query matches everything. Dataset order is preserved.
func Filter(all []Masjid, query string) []Masjid {
	fold := cases.Fold()
	q := fold.String(query)
	out := make([]Masjid, 0, len(all))
	for _, m := range all {
		if q == "" ||
			strings.Contains(fold.String(m.Name), q) ||
			strings.Contains(fold.String(m.Address), q) {
			out = append(out, m)
		}
	}
	return out
}
