package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache("test", 100, 1024*1024)

	mc.Set("icon", []byte("png-bytes"), time.Hour)

	got, ok := mc.Get("icon")
	if !ok {
		t.Fatal("expected key to be found")
	}
	if string(got) != "png-bytes" {
		t.Errorf("got %s, want png-bytes", got)
	}
}

func TestMemoryCache_ReturnsCopy(t *testing.T) {
	mc := NewMemoryCache("test", 10, 1024)
	mc.Set("k", []byte("abc"), 0)

	got, _ := mc.Get("k")
	got[0] = 'z'

	again, _ := mc.Get("k")
	if string(again) != "abc" {
		t.Errorf("cached value mutated: %s", again)
	}
}

func TestMemoryCache_TTLExpiration(t *testing.T) {
	mc := NewMemoryCache("test", 100, 1024*1024)
	mc.Set("expiring", []byte("v"), 50*time.Millisecond)

	if !mc.Contains("expiring") {
		t.Fatal("expected key to exist")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := mc.Get("expiring"); ok {
		t.Fatal("expected key to be expired")
	}
	if mc.Stats().Entries != 0 {
		t.Errorf("expired entry not removed, stats = %+v", mc.Stats())
	}
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	mc := NewMemoryCache("test", 10, 1024)
	mc.Set("k", []byte("v"), 0)

	time.Sleep(10 * time.Millisecond)

	if _, ok := mc.Get("k"); !ok {
		t.Fatal("zero TTL entry should not expire")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	mc := NewMemoryCache("test", 3, 1024*1024)

	mc.Set("key1", []byte("value1"), time.Hour)
	mc.Set("key2", []byte("value2"), time.Hour)
	mc.Set("key3", []byte("value3"), time.Hour)

	// key1 becomes most recent
	mc.Get("key1")

	mc.Set("key4", []byte("value4"), time.Hour)

	if _, ok := mc.Get("key2"); ok {
		t.Fatal("expected key2 to be evicted")
	}
	for _, k := range []string{"key1", "key3", "key4"} {
		if _, ok := mc.Get(k); !ok {
			t.Fatalf("expected %s to exist", k)
		}
	}
}

func TestMemoryCache_SizeEviction(t *testing.T) {
	mc := NewMemoryCache("test", 100, 10)

	mc.Set("a", []byte("12345"), 0)
	mc.Set("b", []byte("12345"), 0)
	mc.Set("c", []byte("12345"), 0)

	stats := mc.Stats()
	if stats.SizeBytes > 10 {
		t.Errorf("SizeBytes = %d, want <= 10", stats.SizeBytes)
	}
	if mc.Contains("a") {
		t.Error("expected oldest entry to be evicted")
	}
}

func TestMemoryCache_UpdateAdjustsSize(t *testing.T) {
	mc := NewMemoryCache("test", 10, 1024)
	mc.Set("k", []byte("1234"), 0)
	mc.Set("k", []byte("12"), 0)

	if got := mc.Stats(); got.Entries != 1 || got.SizeBytes != 2 {
		t.Errorf("Stats() = %+v, want 1 entry of 2 bytes", got)
	}

	mc.Delete("k")
	if got := mc.Stats(); got.Entries != 0 || got.SizeBytes != 0 {
		t.Errorf("Stats() after delete = %+v", got)
	}
}
