package catalog

import (
	"context"
	"fmt"
	"iter"
)

// ResolveOptions selects which registry entries are considered.
type ResolveOptions struct {
	IncludePrerelease bool
	IncludeUnlisted   bool
}

// DefaultResolveOptions includes prerelease and unlisted versions.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{IncludePrerelease: true, IncludeUnlisted: true}
}

// ResolvePackages queries registry once per distinct name and yields a
// record for every package that has a details URL, in completion order.
// Query failures are reported with the package name and skipped.
func ResolvePackages(ctx context.Context, registry Registry, names []string, opts ResolveOptions, reporter ErrorReporter) iter.Seq[PackageRecord] {
	distinct := Distinct(names)

	return func(yield func(PackageRecord) bool) {
		resolved := FanOut(ctx, reporter, StageResolve, distinct, func(ctx context.Context, name string) (PackageRecord, bool, error) {
			entries, err := registry.QueryMetadata(ctx, name, opts.IncludePrerelease, opts.IncludeUnlisted)
			if err != nil {
				return PackageRecord{}, false, &UnitError{
					Err:        fmt.Errorf("query %s: %w", name, err),
					Properties: map[string]string{PropPackageName: name},
				}
			}
			record, ok := RecordFrom(name, entries)
			return record, ok, nil
		})

		for _, record := range resolved {
			if !yield(record) {
				return
			}
		}
	}
}

// RecordFrom builds the record for name from the last registry entry.
// It reports false when there are no entries or the last one lacks a details URL.
func RecordFrom(name string, entries []PackageMetadata) (PackageRecord, bool) {
	if len(entries) == 0 {
		return PackageRecord{}, false
	}

	last := entries[len(entries)-1]
	if last.DetailsURL == "" {
		return PackageRecord{}, false
	}

	icon := last.IconURL
	if icon == "" {
		icon = DefaultIconURL
	}
	return PackageRecord{Name: name, IconURI: icon, DetailsURI: last.DetailsURL}, true
}

// Distinct returns names without exact duplicates, keeping first occurrences in order.
func Distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
