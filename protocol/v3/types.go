// Package v3 implements the parts of the NuGet v3 protocol used to resolve
// package metadata: service index discovery, registration pages and the
// package details URL template.
package v3

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrPackageNotFound is returned when the registration index returns 404.
	ErrPackageNotFound = errors.New("package not found")

	// ErrResourceNotFound is returned when the service index lacks a resource type.
	ErrResourceNotFound = errors.New("resource not found in service index")
)

// ServiceIndex represents the NuGet v3 service index.
// See: https://learn.microsoft.com/en-us/nuget/api/service-index
type ServiceIndex struct {
	Version   string     `json:"version"`
	Resources []Resource `json:"resources"`
}

// Resource represents a service resource in the service index.
type Resource struct {
	ID      string `json:"@id"`
	Type    string `json:"@type"`
	Comment string `json:"comment,omitempty"`
}

// Well-known resource types
const (
	ResourceTypeRegistrationsBaseURL      = "RegistrationsBaseUrl"
	ResourceTypePackageDetailsURITemplate = "PackageDetailsUriTemplate/5.1.0"
)

// ServiceIndexCacheTTL is how long a fetched service index is reused.
const ServiceIndexCacheTTL = 40 * time.Minute

// RegistrationCacheTTL is how long registration responses are reused when a
// response cache is configured.
const RegistrationCacheTTL = 30 * time.Minute

// RegistrationIndex represents the top-level registration index.
type RegistrationIndex struct {
	Count int                `json:"count"`
	Items []RegistrationPage `json:"items"`
}

// RegistrationPage represents a page of registration entries. Items is
// empty when the page must be fetched separately from ID.
type RegistrationPage struct {
	ID    string             `json:"@id"`
	Count int                `json:"count"`
	Items []RegistrationLeaf `json:"items,omitempty"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
}

// RegistrationLeaf represents a single package version registration.
type RegistrationLeaf struct {
	ID           string               `json:"@id"`
	CatalogEntry *RegistrationCatalog `json:"catalogEntry"`
}

// RegistrationCatalog holds the per-version metadata fields consumed here.
type RegistrationCatalog struct {
	ID          string `json:"@id"`
	PackageID   string `json:"id"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
	ProjectURL  string `json:"projectUrl,omitempty"`
	Listed      *bool  `json:"listed,omitempty"`
}

// IsListed reports the listed flag; feeds that omit it list every version.
func (c *RegistrationCatalog) IsListed() bool {
	return c.Listed == nil || *c.Listed
}

// IsPrerelease reports whether Version carries a SemVer prerelease label.
func (c *RegistrationCatalog) IsPrerelease() bool {
	version, _, _ := strings.Cut(c.Version, "+")
	return strings.Contains(version, "-")
}

// PackageMetadata is the flattened per-version view returned by QueryMetadata.
type PackageMetadata struct {
	ID         string
	Version    string
	IconURL    string
	DetailsURL string
}
