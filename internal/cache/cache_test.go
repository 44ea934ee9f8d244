package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	key := Key("http://example.com/page")

	if !strings.HasPrefix(key, "ackshually:v1:") {
		t.Errorf("unexpected key prefix: %q", key)
	}
	if key != Key("http://example.com/page") {
		t.Error("key derivation must be stable")
	}
	if key == Key("http://example.com/other") {
		t.Error("different URLs must produce different keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found := c.Get("k")
	if !found || !bytes.Equal(got, []byte("value")) {
		t.Errorf("Get = %q, %v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	key := Key("http://example.com/page")
	if err := c.Set(key, []byte("<html>page</html>"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found := c.Get(key)
	if !found || string(got) != "<html>page</html>" {
		t.Errorf("Get = %q, %v", got, found)
	}

	// A fresh instance over the same dir sees the entry
	c2 := NewDiskCache(dir, time.Minute)
	if _, found := c2.Get(key); !found {
		t.Error("entry must survive across instances")
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	key := Key("http://example.com/page")
	if err := c.Set(key, []byte("stale"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
	// Expired file is removed on read
	if _, err := os.Stat(filepath.Join(dir, key+".cache")); !os.IsNotExist(err) {
		t.Error("expected expired file to be removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	key := Key("http://example.com/page")
	if err := os.WriteFile(filepath.Join(dir, key+".cache"), []byte("not json"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, found := c.Get(key); found {
		t.Error("corrupt entry must read as a miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer
	seed := NewDiskCache(dir, time.Minute)
	key := Key("http://example.com/page")
	if err := seed.Set(key, []byte("persisted"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Minute)

	got, found := c.Get(key)
	if !found || string(got) != "persisted" {
		t.Fatalf("Get = %q, %v", got, found)
	}

	// Remove the disk file; the promoted copy must still serve
	if err := seed.Delete(key); err != nil {
		t.Fatalf("delete disk entry: %v", err)
	}
	if _, found := c.Get(key); !found {
		t.Error("expected promoted memory entry to serve after disk removal")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	key := Key("http://example.com/page")
	if err := c.Set(key, []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	disk := NewDiskCache(dir, time.Minute)
	if _, found := disk.Get(key); !found {
		t.Error("expected entry in disk layer")
	}
}
