package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("search:basic:weather in Lagos")
	k2 := Key("search:basic:weather in Lagos")
	k3 := Key("search:basic:weather in Accra")

	if k1 != k2 {
		t.Error("same input must produce the same key")
	}
	if k1 == k3 {
		t.Error("different inputs must produce different keys")
	}
	if !strings.HasPrefix(k1, "sibyl:v1:") {
		t.Errorf("key missing version prefix: %q", k1)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if val, found := c.Get("k"); !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("expected hit with %q, got %q (found=%v)", "v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set(Key("url"), []byte("page body"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if val, found := c.Get(Key("url")); !found || !bytes.Equal(val, []byte("page body")) {
		t.Errorf("expected hit, got %q (found=%v)", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	// Seed disk only, simulating a restart that lost the memory layer
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("persisted"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || !bytes.Equal(val, []byte("persisted")) {
		t.Fatalf("expected disk hit, got %q (found=%v)", val, found)
	}

	// Second read should come from the memory layer
	if _, found := c.Get("k"); !found {
		t.Error("expected promoted entry in memory")
	}
}
