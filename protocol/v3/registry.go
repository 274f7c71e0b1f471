package v3

import (
	"context"
	"errors"

	"github.com/willibrandon/nugetcatalog/catalog"
)

// Registry binds a MetadataClient to one feed so it satisfies catalog.Registry.
type Registry struct {
	client    *MetadataClient
	sourceURL string
}

// NewRegistry creates a Registry for sourceURL.
func NewRegistry(client *MetadataClient, sourceURL string) *Registry {
	return &Registry{client: client, sourceURL: sourceURL}
}

// SourceURL returns the bound feed.
func (r *Registry) SourceURL() string { return r.sourceURL }

// QueryMetadata returns the package's versions in registry order. A package
// the feed does not know yields no entries rather than an error.
func (r *Registry) QueryMetadata(ctx context.Context, name string, includePrerelease, includeUnlisted bool) ([]catalog.PackageMetadata, error) {
	entries, err := r.client.QueryMetadata(ctx, r.sourceURL, name, includePrerelease, includeUnlisted)
	if errors.Is(err, ErrPackageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result := make([]catalog.PackageMetadata, len(entries))
	for i, e := range entries {
		result[i] = catalog.PackageMetadata{
			Version:    e.Version,
			IconURL:    e.IconURL,
			DetailsURL: e.DetailsURL,
		}
	}
	return result, nil
}

var _ catalog.Registry = (*Registry)(nil)
