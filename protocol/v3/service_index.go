package v3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/willibrandon/nugetcatalog/auth"
	nugethttp "github.com/willibrandon/nugetcatalog/http"
)

// ServiceIndexClient provides access to NuGet v3 service index.
type ServiceIndexClient struct {
	httpClient    *nugethttp.Client
	authenticator auth.Authenticator

	mu    sync.RWMutex
	cache map[string]*cachedServiceIndex
}

type cachedServiceIndex struct {
	index     *ServiceIndex
	expiresAt time.Time
}

// NewServiceIndexClient creates a new service index client. authenticator
// may be nil for public feeds.
func NewServiceIndexClient(httpClient *nugethttp.Client, authenticator auth.Authenticator) *ServiceIndexClient {
	return &ServiceIndexClient{
		httpClient:    httpClient,
		authenticator: authenticator,
		cache:         make(map[string]*cachedServiceIndex),
	}
}

// IndexURL returns the service index URL of a source. Sources may be given
// either as the index.json URL itself or as its base.
func IndexURL(sourceURL string) string {
	if strings.HasSuffix(sourceURL, "/index.json") {
		return sourceURL
	}
	return strings.TrimSuffix(sourceURL, "/") + "/index.json"
}

// GetServiceIndex retrieves the service index for a given source URL.
// Caches the result for ServiceIndexCacheTTL.
func (c *ServiceIndexClient) GetServiceIndex(ctx context.Context, sourceURL string) (*ServiceIndex, error) {
	indexURL := IndexURL(sourceURL)

	c.mu.RLock()
	cached, ok := c.cache[indexURL]
	c.mu.RUnlock()

	if ok && time.Now().Before(cached.expiresAt) {
		return cached.index, nil
	}

	index, err := c.fetchServiceIndex(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[indexURL] = &cachedServiceIndex{
		index:     index,
		expiresAt: time.Now().Add(ServiceIndexCacheTTL),
	}
	c.mu.Unlock()

	return index, nil
}

func (c *ServiceIndexClient) fetchServiceIndex(ctx context.Context, indexURL string) (*ServiceIndex, error) {
	req, err := c.newRequest(indexURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch service index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("service index returned %d: %s", resp.StatusCode, body)
	}

	var index ServiceIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("decode service index: %w", err)
	}

	return &index, nil
}

// GetResourceURL finds the first resource of the given type.
// "RegistrationsBaseUrl" also matches versioned types such as "RegistrationsBaseUrl/3.6.0".
func (c *ServiceIndexClient) GetResourceURL(ctx context.Context, sourceURL, resourceType string) (string, error) {
	index, err := c.GetServiceIndex(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	for _, resource := range index.Resources {
		if matchesResourceType(resource.Type, resourceType) {
			return resource.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrResourceNotFound, resourceType)
}

func matchesResourceType(actual, requested string) bool {
	if actual == requested {
		return true
	}
	rest, ok := strings.CutPrefix(actual, requested)
	return ok && strings.HasPrefix(rest, "/")
}

// ClearCache removes all cached service indexes.
func (c *ServiceIndexClient) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]*cachedServiceIndex)
	c.mu.Unlock()
}

// newRequest builds an authenticated GET request for a feed URL.
func (c *ServiceIndexClient) newRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authenticator != nil {
		if err := c.authenticator.Authenticate(req); err != nil {
			return nil, fmt.Errorf("authenticate request: %w", err)
		}
	}
	return req, nil
}
