// Package catalog builds the installed-package catalog of a repository: it
// fetches project files, extracts package references, resolves each package
// against a registry, and persists the sorted, deduplicated result.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultIconURL is used for packages that publish no icon.
const DefaultIconURL = "https://www.nuget.org/Content/gallery/img/logo-og-600x600.png"

// DefaultStoreKey is the key the catalog blob is persisted under.
const DefaultStoreKey = "InstalledNugetPackages"

// PackageRecord is one resolved package.
type PackageRecord struct {
	Name       string `json:"name"`
	IconURI    string `json:"iconUri"`
	DetailsURI string `json:"detailsUri"`
}

// Catalog is sorted ascending by Name with no duplicate names.
type Catalog []PackageRecord

// Names returns the package names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name
	}
	return names
}

// Marshal serializes the catalog as a JSON array. A nil catalog encodes as [].
func (c Catalog) Marshal() (string, error) {
	if c == nil {
		c = Catalog{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal catalog: %w", err)
	}
	return string(data), nil
}

// UnmarshalCatalog parses a blob written by Catalog.Marshal.
func UnmarshalCatalog(blob string) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal([]byte(blob), &c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return c, nil
}

// PackageMetadata is one version entry returned by a Registry, in registry order.
type PackageMetadata struct {
	Version    string
	IconURL    string
	DetailsURL string
}

// RepositoryFile is a located project file and where its raw content lives.
type RepositoryFile struct {
	Path        string
	DownloadURL string
}

// Locator lists the project file paths of the target repository.
type Locator interface {
	ListProjectFilePaths(ctx context.Context) ([]string, error)
}

// FileResolver turns a path into downloadable content.
type FileResolver interface {
	Resolve(ctx context.Context, path string) (RepositoryFile, error)
	Download(ctx context.Context, url string) (string, error)
}

// Registry returns every metadata entry of a package.
type Registry interface {
	QueryMetadata(ctx context.Context, name string, includePrerelease, includeUnlisted bool) ([]PackageMetadata, error)
}

// Store persists the serialized catalog.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// IconPrefetcher warms an image cache for one icon URI.
type IconPrefetcher interface {
	Prefetch(ctx context.Context, uri string) error
}

// ErrorReporter receives failures that are isolated instead of returned.
type ErrorReporter interface {
	Report(ctx context.Context, err error, properties map[string]string)
}

// Report property keys.
const (
	PropComponent   = "Component"
	PropStage       = "Stage"
	PropKey         = "Key"
	PropPackageName = "PackageName"
	PropProjectPath = "ProjectPath"
	PropRunID       = "RunId"
)
