package model

import (
	"sort"
	"strings"
)

// sortedJoin produces a stable, order-independent signature for a set of
// ids, used wherever a collection of orders needs a dedup key keyed on the
// unordered set rather than the sequence it was built in.
func sortedJoin(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	return strings.Join(sorted, "|")
}

// OrderSetSignature is the exported form of sortedJoin, used by the bundle
// generator and the TSP-PC cache key, both of which need the same
// unordered-id-set keying discipline.
func OrderSetSignature(ids []string) string {
	return sortedJoin(ids)
}
