package github

import (
	"context"
	"slices"
)

// StaticLocator returns a fixed list of project file paths, for repositories
// whose layout is known ahead of time.
type StaticLocator []string

// ListProjectFilePaths returns a copy of the configured paths.
func (l StaticLocator) ListProjectFilePaths(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone([]string(l)), nil
}
