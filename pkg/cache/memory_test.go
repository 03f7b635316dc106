package cache

import (
	"context"
	"testing"
	"time"
)

type cachedVec struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(4))
	defer mc.Close()
	ctx := context.Background()

	in := []cachedVec{{Symbol: "AAPL", Score: 0.4}, {Symbol: "MSFT", Score: -0.1}}
	if err := mc.Set(ctx, "vecs", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []cachedVec
	if err := mc.Get(ctx, "vecs", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out) != 2 || out[0].Symbol != "AAPL" || out[1].Score != -0.1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestMemoryCacheStringFastPath(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "plain", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "k", &s); err != nil || s != "plain" {
		t.Fatalf("want plain, got %q err %v", s, err)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); err != ErrCacheMiss {
		t.Fatalf("want ErrCacheMiss, got %v", err)
	}

	_ = mc.Set(ctx, "short", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if err := mc.Get(ctx, "short", &s); err != ErrCacheMiss {
		t.Fatalf("expired entry should miss, got %v", err)
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", "3", time.Minute)

	var s string
	if err := mc.Get(ctx, "a", &s); err != ErrCacheMiss {
		t.Fatalf("oldest entry should have been evicted, got %v", err)
	}
	if err := mc.Get(ctx, "c", &s); err != nil {
		t.Fatalf("newest entry should survive: %v", err)
	}
}

func TestMemoryCacheIncrement(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := mc.Increment(ctx, "n")
		if err != nil || got != want {
			t.Fatalf("increment %d: got %d err %v", want, got, err)
		}
	}
}
