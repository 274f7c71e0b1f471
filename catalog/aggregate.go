package catalog

import (
	"cmp"
	"iter"
	"slices"
)

// Aggregate collects records into a Catalog. When names repeat, the first
// record seen wins. The result is sorted by name.
func Aggregate(records iter.Seq[PackageRecord]) Catalog {
	byName := make(map[string]PackageRecord)
	for r := range records {
		if r.Name == "" {
			continue
		}
		if _, seen := byName[r.Name]; !seen {
			byName[r.Name] = r
		}
	}

	catalog := make(Catalog, 0, len(byName))
	for _, r := range byName {
		catalog = append(catalog, r)
	}
	slices.SortFunc(catalog, func(a, b PackageRecord) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return catalog
}
