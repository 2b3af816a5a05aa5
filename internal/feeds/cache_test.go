package feeds

import (
	"testing"
	"time"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
)

func TestCache_SetGet(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())

	cache.Set("key", "value")
	got, ok := cache.Get("key")
	if !ok || got != "value" {
		t.Errorf("Get() = %v, %v", got, ok)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("expected miss")
	}
}

func TestCache_Expiry(t *testing.T) {
	cache := NewCache(CacheConfig{TTL: 10 * time.Millisecond, MaxItems: 10})

	cache.Set("key", "value")
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Error("expired entry still served")
	}
}

func TestCache_TypedGetters(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())

	home := &HomeFeeds{Popular: []scoring.ScoredItem{{Item: media.Item{ID: 1}}}}
	cache.Set("home", home)
	gotHome, ok := cache.GetHomeFeeds("home")
	if !ok || len(gotHome.Popular) != 1 {
		t.Errorf("GetHomeFeeds() = %+v, %v", gotHome, ok)
	}

	scored := []scoring.ScoredItem{{Item: media.Item{ID: 2}, Score: 1.5}}
	cache.Set("scored", scored)
	gotScored, ok := cache.GetScoredItems("scored")
	if !ok || len(gotScored) != 1 || gotScored[0].ID != 2 {
		t.Errorf("GetScoredItems() = %+v, %v", gotScored, ok)
	}

	// Wrong type behind the key is a miss, not a panic.
	cache.Set("clash", "not a feed")
	if _, ok := cache.GetHomeFeeds("clash"); ok {
		t.Error("type mismatch must miss")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("deleted entry still served")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d", cache.Len())
	}
}

func TestCache_CloseIsIdempotentAndClears(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())

	cache.Set("a", 1)
	cache.Close()
	cache.Close()

	if cache.Len() != 0 {
		t.Errorf("Len() after Close = %d", cache.Len())
	}
}
