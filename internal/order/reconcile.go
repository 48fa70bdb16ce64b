package order

import "github.com/samber/lo"

// Reconcile merges a stored display order with the files currently present in
// a category folder. current is in the object store's listing order.
//
// A nil stored order means no record exists; the listing order is returned.
// Otherwise stored names that are no longer present are dropped, and present
// names missing from stored are appended in listing order. The result is
// always a permutation of current.
func Reconcile(stored []string, current []string) []string {
	current = lo.Uniq(current)
	if stored == nil {
		return current
	}

	present := make(map[string]struct{}, len(current))
	for _, name := range current {
		present[name] = struct{}{}
	}

	out := make([]string, 0, len(current))
	seen := make(map[string]struct{}, len(current))
	for _, name := range stored {
		if _, ok := present[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	newFiles := lo.Filter(current, func(name string, _ int) bool {
		_, ok := seen[name]
		return !ok
	})
	return append(out, newFiles...)
}
