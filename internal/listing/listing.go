// Package listing holds the ordering, paging and filtering primitives shared by the list and search operations.
//
// Alphabetical ordering is accent-insensitive: names are folded (decomposed, combining marks dropped,
// recomposed) and upper-cased before comparison, so "Émilie" sorts next to "Emilie".
package listing

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unbounded is passed as a page size when the client did not supply one.
const Unbounded = -1

// Fold strips combining marks from s.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SortKey is the accent-folded, upper-cased form of s used for alphabetical ordering.
func SortKey(s string) string {
	return strings.ToUpper(Fold(s))
}

// Contains reports whether sub occurs in s ignoring case and accents.
func Contains(s, sub string) bool {
	return strings.Contains(SortKey(s), SortKey(sub))
}

// IndexKey returns the first letter of the sort key, or "#" for an empty name.
func IndexKey(name string) string {
	key := SortKey(strings.TrimSpace(name))
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return "#"
	}
	return string(r)
}

// SortAlphabetical orders items by the folded key of each item. Ties keep their input order.
func SortAlphabetical[T any](items []T, key func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(SortKey(key(a)), SortKey(key(b)))
	})
}

// SortNewest orders items by added time, most recent first.
func SortNewest[T any](items []T, added func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return added(b).Compare(added(a))
	})
}

// Page returns the window of items starting at offset holding at most size elements.
//
// A size of [Unbounded] returns everything from offset on. Out of range windows yield an empty slice.
func Page[T any](items []T, size, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	end := len(items)
	if size >= 0 && offset+size < end {
		end = offset + size
	}
	return items[offset:end]
}

// FilterByYear keeps items whose year falls between from and to inclusive.
//
// When from is greater than to the range is read backwards and the result is ordered by descending year.
// Otherwise the result is ordered by ascending year.
func FilterByYear[T any](items []T, from, to int, year func(T) int) []T {
	lo, hi := from, to
	reversed := from > to
	if reversed {
		lo, hi = to, from
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if y := year(it); y >= lo && y <= hi {
			out = append(out, it)
		}
	}

	slices.SortStableFunc(out, func(a, b T) int {
		if reversed {
			return cmp.Compare(year(b), year(a))
		}
		return cmp.Compare(year(a), year(b))
	})
	return out
}

// FilterByGenre keeps items whose genre equals genre ignoring case.
func FilterByGenre[T any](items []T, genre string, genreOf func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.EqualFold(genreOf(it), genre) {
			out = append(out, it)
		}
	}
	return out
}

// Shuffle randomizes the order of items in place.
func Shuffle[T any](items []T) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
