package cache

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache must miss")
	}

	if err := c.Set("k", []byte("store"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "store" {
		t.Errorf("expected cached value back, got %q found=%v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted key must miss")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("a"); found {
		t.Error("clear must drop every entry")
	}
}

func TestKey_Namespaced(t *testing.T) {
	k := Key("abc123")
	if !strings.HasPrefix(k, "lexstore:v1:") {
		t.Errorf("missing namespace prefix: %s", k)
	}
	if k != "lexstore:v1:abc123" {
		t.Errorf("key must embed the hash verbatim, got %s", k)
	}
}
