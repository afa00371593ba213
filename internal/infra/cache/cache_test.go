package cache_test

import (
	"testing"
	"time"

	"github.com/calder/taxlead-crm-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("leads:all", "snapshot")
	val, ok := c.Get("leads:all")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "snapshot" {
		t.Errorf("expected 'snapshot', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("leads:all", "snapshot")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("leads:all"); ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("profile:abc", "Admin")
	c.Delete("profile:abc")

	if _, ok := c.Get("profile:abc"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_SetRestartsTTL(t *testing.T) {
	c := cache.New[string](80 * time.Millisecond)

	c.Set("k", "v1")
	time.Sleep(50 * time.Millisecond)
	c.Set("k", "v2")
	time.Sleep(50 * time.Millisecond)

	val, ok := c.Get("k")
	if !ok {
		t.Fatal("expected entry to survive, TTL restarts on Set")
	}
	if val != "v2" {
		t.Errorf("expected 'v2', got '%s'", val)
	}
}
