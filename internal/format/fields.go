package format

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// field is a single keyed element value of a segment occurrence, as read
// from a JSON object or the child elements of an XML element.
type field struct {
	key   string // The key or tag name e.g. "ProductID3"
	value string // The element value
}

// indexOf returns the numeric suffix of key when it is named "{segment}{n}"
// e.g. indexOf("ProductID", "ProductID12") returns 12, true.
func indexOf(segment, key string) (int, bool) {
	suffix, ok := strings.CutPrefix(key, segment)
	if !ok || suffix == "" {
		return 0, false
	}

	for _, char := range suffix {
		if char < '0' || char > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(suffix)
	if err != nil {
		// Only possible on overflow
		return 0, false
	}

	return n, true
}

// isElementKey reports whether key names an element of the segment, it must start with
// the segment name and be more than just the bare segment name.
func isElementKey(segment, key string) bool {
	return len(key) > len(segment) && strings.HasPrefix(key, segment)
}

// orderFields returns the values of the fields ordered by their key's numeric
// suffix, so {ProductID3: c, ProductID1: a, ProductID2: b} reads back as a, b, c no
// matter what order the producer wrote the keys in.
//
// Keys without a numeric suffix sort after all the indexed ones, keeping the
// order they appeared in.
func orderFields(segment string, fields []field) []string {
	sorted := slices.Clone(fields)

	slices.SortStableFunc(sorted, func(a, b field) int {
		ai, aok := indexOf(segment, a.key)
		bi, bok := indexOf(segment, b.key)

		switch {
		case aok && bok:
			return cmp.Compare(ai, bi)
		case aok:
			return -1
		case bok:
			return 1
		default:
			return 0
		}
	})

	values := make([]string, 0, len(sorted))
	for _, f := range sorted {
		values = append(values, f.value)
	}

	return values
}
