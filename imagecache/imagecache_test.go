package imagecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nugethttp "github.com/willibrandon/nugetcatalog/http"
)

func iconServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("PNG" + r.URL.Path))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCache_PrefetchAndGet(t *testing.T) {
	var hits atomic.Int32
	server := iconServer(t, &hits)
	c := New(nugethttp.NewClient(nil), DefaultConfig())
	ctx := context.Background()

	uri := server.URL + "/polly.png"
	require.NoError(t, c.Prefetch(ctx, uri))
	require.NoError(t, c.Prefetch(ctx, uri))

	data, ok := c.Get(uri)
	require.True(t, ok)
	assert.Equal(t, "PNG/polly.png", string(data))
	assert.Equal(t, int32(1), hits.Load(), "cached icon should not be fetched twice")
}

func TestCache_PrefetchErrors(t *testing.T) {
	var hits atomic.Int32
	server := iconServer(t, &hits)
	c := New(nugethttp.NewClient(nil), DefaultConfig())

	assert.Error(t, c.Prefetch(context.Background(), ""))
	assert.Error(t, c.Prefetch(context.Background(), server.URL+"/missing.png"))

	_, ok := c.Get(server.URL + "/missing.png")
	assert.False(t, ok)
}

func TestCache_PrefetchAll(t *testing.T) {
	var hits atomic.Int32
	server := iconServer(t, &hits)
	c := New(nugethttp.NewClient(nil), Config{MaxEntries: 10, MaxBytes: 1 << 20, Concurrency: 2})

	uris := []string{
		server.URL + "/a.png",
		server.URL + "/b.png",
		server.URL + "/missing.png",
		server.URL + "/c.png",
	}

	var mu sync.Mutex
	var failed []string
	c.PrefetchAll(context.Background(), uris, func(uri string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, uri)
	})

	assert.Equal(t, []string{server.URL + "/missing.png"}, failed)
	assert.Equal(t, 3, c.Stats().Entries)
}
