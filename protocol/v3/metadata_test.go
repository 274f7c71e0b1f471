package v3

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/nugetcatalog/cache"
)

func boolPtr(b bool) *bool { return &b }

func TestMetadataClient_GetPackageMetadata_FetchesPages(t *testing.T) {
	feed := newTestFeed(t)
	pagePath := "/registration/polly/page/1.0.0/8.0.0.json"
	feed.registration["polly"] = RegistrationIndex{
		Count: 2,
		Items: []RegistrationPage{
			{Count: 1, Items: []RegistrationLeaf{leaf("Polly", "1.0.0", "", nil)}},
			{ID: feed.server.URL + pagePath, Lower: "7.0.0", Upper: "8.0.0"},
		},
	}
	feed.pages[pagePath] = RegistrationPage{
		Count: 2,
		Items: []RegistrationLeaf{
			leaf("Polly", "7.2.4", "", nil),
			leaf("Polly", "8.0.0", "https://example.test/polly.png", nil),
		},
	}

	_, client := newTestClients()
	index, err := client.GetPackageMetadata(context.Background(), feed.url(), "Polly")
	require.NoError(t, err)

	require.Len(t, index.Items, 2)
	require.Len(t, index.Items[1].Items, 2)
	assert.Equal(t, "8.0.0", index.Items[1].Items[1].CatalogEntry.Version)
}

func TestMetadataClient_QueryMetadata(t *testing.T) {
	feed := newTestFeed(t)
	feed.registration["newtonsoft.json"] = RegistrationIndex{
		Count: 1,
		Items: []RegistrationPage{{
			Count: 4,
			Items: []RegistrationLeaf{
				leaf("Newtonsoft.Json", "12.0.3", "https://example.test/old.png", nil),
				leaf("Newtonsoft.Json", "13.0.1", "https://example.test/nj.png", boolPtr(false)),
				leaf("Newtonsoft.Json", "13.0.2-beta1", "https://example.test/beta.png", nil),
				leaf("Newtonsoft.Json", "13.0.3", "https://example.test/nj.png", boolPtr(true)),
			},
		}},
	}

	_, client := newTestClients()
	ctx := context.Background()

	t.Run("includes everything in registry order", func(t *testing.T) {
		got, err := client.QueryMetadata(ctx, feed.url(), "Newtonsoft.Json", true, true)
		require.NoError(t, err)
		require.Len(t, got, 4)

		last := got[len(got)-1]
		assert.Equal(t, "13.0.3", last.Version)
		assert.Equal(t, "https://example.test/nj.png", last.IconURL)
		assert.Equal(t, "https://www.nuget.org/packages/Newtonsoft.Json/13.0.3", last.DetailsURL)
	})

	t.Run("filters prerelease and unlisted", func(t *testing.T) {
		got, err := client.QueryMetadata(ctx, feed.url(), "Newtonsoft.Json", false, false)
		require.NoError(t, err)

		var versions []string
		for _, m := range got {
			versions = append(versions, m.Version)
		}
		assert.Equal(t, []string{"12.0.3", "13.0.3"}, versions)
	})
}

func TestMetadataClient_QueryMetadata_NoDetailsTemplate(t *testing.T) {
	feed := newTestFeed(t)
	feed.withTemplate = false
	feed.registration["private.lib"] = RegistrationIndex{
		Count: 1,
		Items: []RegistrationPage{{Count: 1, Items: []RegistrationLeaf{leaf("Private.Lib", "1.0.0", "", nil)}}},
	}

	_, client := newTestClients()
	got, err := client.QueryMetadata(context.Background(), feed.url(), "Private.Lib", true, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].DetailsURL)
}

func TestMetadataClient_NotFound(t *testing.T) {
	feed := newTestFeed(t)
	_, client := newTestClients()

	_, err := client.QueryMetadata(context.Background(), feed.url(), "Does.Not.Exist", true, true)
	assert.True(t, errors.Is(err, ErrPackageNotFound))
}

func TestMetadataClient_ResponseCache(t *testing.T) {
	feed := newTestFeed(t)
	feed.registration["serilog"] = RegistrationIndex{
		Count: 1,
		Items: []RegistrationPage{{Count: 1, Items: []RegistrationLeaf{leaf("Serilog", "3.1.1", "", nil)}}},
	}

	_, client := newTestClients()
	client.SetResponseCache(cache.NewMemoryCache("registration", 100, 1<<20))
	ctx := context.Background()

	_, err := client.GetPackageMetadata(ctx, feed.url(), "Serilog")
	require.NoError(t, err)
	before := feed.requests.Load()

	_, err = client.GetPackageMetadata(ctx, feed.url(), "Serilog")
	require.NoError(t, err)
	assert.Equal(t, before, feed.requests.Load(), "second lookup should be served from cache")
}

func TestExpandDetailsURL(t *testing.T) {
	assert.Equal(t, "", ExpandDetailsURL("", "Polly", "8.0.0"))
	assert.Equal(t, "https://www.nuget.org/packages/Polly/8.0.0",
		ExpandDetailsURL("https://www.nuget.org/packages/{id}/{version}", "Polly", "8.0.0"))
}

func TestRegistryCatalog_IsPrerelease(t *testing.T) {
	tests := map[string]bool{
		"1.0.0":            false,
		"1.0.0-beta":       true,
		"1.0.0+build-meta": false,
		"2.0.0-rc.1+sha":   true,
	}
	for version, want := range tests {
		entry := &RegistrationCatalog{Version: version}
		assert.Equal(t, want, entry.IsPrerelease(), version)
	}
}
