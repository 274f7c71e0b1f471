package v3

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	nugethttp "github.com/willibrandon/nugetcatalog/http"
)

// testFeed serves a minimal v3 feed: a service index, one registration per
// package and optional external pages.
type testFeed struct {
	server       *httptest.Server
	withTemplate bool
	registration map[string]RegistrationIndex // keyed by lowercased id
	pages        map[string]RegistrationPage  // keyed by path
	indexHits    atomic.Int32
	requests     atomic.Int32
	authHeader   atomic.Value
}

func newTestFeed(t *testing.T) *testFeed {
	t.Helper()
	f := &testFeed{
		withTemplate: true,
		registration: make(map[string]RegistrationIndex),
		pages:        make(map[string]RegistrationPage),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *testFeed) url() string { return f.server.URL + "/v3/index.json" }

func (f *testFeed) serve(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	f.authHeader.Store(r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/v3/index.json":
		f.indexHits.Add(1)
		index := ServiceIndex{
			Version: "3.0.0",
			Resources: []Resource{
				{ID: f.server.URL + "/registration/", Type: ResourceTypeRegistrationsBaseURL + "/3.6.0"},
			},
		}
		if f.withTemplate {
			index.Resources = append(index.Resources, Resource{
				ID:   "https://www.nuget.org/packages/{id}/{version}",
				Type: ResourceTypePackageDetailsURITemplate,
			})
		}
		_ = json.NewEncoder(w).Encode(index)

	case strings.HasSuffix(r.URL.Path, "/index.json"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/registration/"), "/index.json")
		reg, ok := f.registration[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(reg)

	default:
		page, ok := f.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(page)
	}
}

func leaf(id, version, icon string, listed *bool) RegistrationLeaf {
	return RegistrationLeaf{
		ID: "https://example.test/" + id + "/" + version + ".json",
		CatalogEntry: &RegistrationCatalog{
			PackageID: id,
			Version:   version,
			IconURL:   icon,
			Listed:    listed,
		},
	}
}

func newTestClients(opts ...func(*ServiceIndexClient)) (*ServiceIndexClient, *MetadataClient) {
	httpClient := nugethttp.NewClient(nil)
	sic := NewServiceIndexClient(httpClient, nil)
	for _, opt := range opts {
		opt(sic)
	}
	return sic, NewMetadataClient(httpClient, sic)
}
