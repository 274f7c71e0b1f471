package v3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/nugetcatalog/cache"
	nugethttp "github.com/willibrandon/nugetcatalog/http"
	"github.com/willibrandon/nugetcatalog/observability"
)

// MetadataClient provides package metadata functionality.
type MetadataClient struct {
	httpClient         *nugethttp.Client
	serviceIndexClient *ServiceIndexClient
	responseCache      *cache.MemoryCache // nil disables
}

// NewMetadataClient creates a new metadata client.
func NewMetadataClient(httpClient *nugethttp.Client, serviceIndexClient *ServiceIndexClient) *MetadataClient {
	return &MetadataClient{
		httpClient:         httpClient,
		serviceIndexClient: serviceIndexClient,
	}
}

// SetResponseCache caches registration index and page bodies by URL for
// RegistrationCacheTTL.
func (c *MetadataClient) SetResponseCache(responseCache *cache.MemoryCache) {
	c.responseCache = responseCache
}

// GetPackageMetadata retrieves the registration index of packageID with every
// page populated, in registry order.
func (c *MetadataClient) GetPackageMetadata(ctx context.Context, sourceURL, packageID string) (*RegistrationIndex, error) {
	baseURL, err := c.serviceIndexClient.GetResourceURL(ctx, sourceURL, ResourceTypeRegistrationsBaseURL)
	if err != nil {
		return nil, fmt.Errorf("get registration URL: %w", err)
	}

	// {baseURL}/{lowercased id}/index.json
	registrationURL := strings.TrimSuffix(baseURL, "/") + "/" + strings.ToLower(packageID) + "/index.json"

	var index RegistrationIndex
	if err := c.getJSON(ctx, registrationURL, &index); err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPackageNotFound, packageID)
		}
		return nil, fmt.Errorf("fetch registration: %w", err)
	}

	// Pages without inline items are fetched in parallel.
	g, gctx := errgroup.WithContext(ctx)
	for i := range index.Items {
		page := &index.Items[i]
		if len(page.Items) > 0 || page.ID == "" {
			continue
		}
		g.Go(func() error {
			var fetched RegistrationPage
			if err := c.getJSON(gctx, page.ID, &fetched); err != nil {
				return fmt.Errorf("fetch page %s: %w", page.ID, err)
			}
			*page = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &index, nil
}

// QueryMetadata returns one PackageMetadata per registered version of id in
// registry order, optionally excluding prerelease and unlisted versions.
// DetailsURL is empty when the feed publishes no details URL template.
func (c *MetadataClient) QueryMetadata(ctx context.Context, sourceURL, id string, includePrerelease, includeUnlisted bool) ([]PackageMetadata, error) {
	ctx, span := observability.StartMetadataQuerySpan(ctx, id, sourceURL)
	defer span.End()

	index, err := c.GetPackageMetadata(ctx, sourceURL, id)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, err
	}

	template, err := c.serviceIndexClient.GetResourceURL(ctx, sourceURL, ResourceTypePackageDetailsURITemplate)
	if err != nil && !errors.Is(err, ErrResourceNotFound) {
		return nil, fmt.Errorf("get details template: %w", err)
	}

	var result []PackageMetadata
	for _, page := range index.Items {
		for _, leaf := range page.Items {
			entry := leaf.CatalogEntry
			if entry == nil {
				continue
			}
			if !includePrerelease && entry.IsPrerelease() {
				continue
			}
			if !includeUnlisted && !entry.IsListed() {
				continue
			}

			packageID := entry.PackageID
			if packageID == "" {
				packageID = id
			}
			result = append(result, PackageMetadata{
				ID:         packageID,
				Version:    entry.Version,
				IconURL:    entry.IconURL,
				DetailsURL: ExpandDetailsURL(template, packageID, entry.Version),
			})
		}
	}

	return result, nil
}

// ExpandDetailsURL substitutes {id} and {version} in a
// PackageDetailsUriTemplate. An empty template yields "".
func ExpandDetailsURL(template, id, version string) string {
	if template == "" {
		return ""
	}
	return strings.NewReplacer("{id}", id, "{version}", version).Replace(template)
}

func (c *MetadataClient) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.getBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *MetadataClient) getBody(ctx context.Context, url string) ([]byte, error) {
	if c.responseCache != nil {
		if body, ok := c.responseCache.Get(url); ok {
			return body, nil
		}
	}

	req, err := c.serviceIndexClient.newRequest(url)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPackageNotFound
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if c.responseCache != nil {
		c.responseCache.Set(url, body, RegistrationCacheTTL)
	}
	return body, nil
}
