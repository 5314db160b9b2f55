package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"hirely/internal/database"
	"hirely/internal/store"
)

// fakeKV is an in-memory stand-in for the Redis commands the cache issues.
type fakeKV struct {
	values   map[string]string
	counters map[string]int64
	sets     int
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, counters: map[string]int64{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.counters[key]; ok {
		cmd.SetVal(strconv.FormatInt(v, 10))
		return cmd
	}
	v, ok := f.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.sets++
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeKV) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(f.counters[key])
	return cmd
}

func samplePage() store.CompanyPage {
	return store.CompanyPage{
		Data:  []database.Company{{Name: "TechNova"}},
		Count: 1,
	}
}

func TestCompanyListRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := NewCompanyList(kv, time.Minute)
	filter := store.CompanyFilter{Search: "tech", Limit: 10}

	if _, ok := c.Get(ctx, filter); ok {
		t.Fatal("hit on empty cache")
	}

	c.Set(ctx, filter, samplePage())
	page, ok := c.Get(ctx, filter)
	if !ok {
		t.Fatal("miss after Set")
	}
	if page.Count != 1 || len(page.Data) != 1 || page.Data[0].Name != "TechNova" {
		t.Errorf("cached page = %+v", page)
	}

	// 不同过滤条件不能命中同一键
	if _, ok := c.Get(ctx, store.CompanyFilter{Search: "tech", Limit: 20}); ok {
		t.Error("different filter hit the same cache entry")
	}
}

func TestInvalidateOrphansCachedPages(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := NewCompanyList(kv, time.Minute)
	filter := store.CompanyFilter{Location: "California"}

	c.Set(ctx, filter, samplePage())
	c.Invalidate(ctx)

	if _, ok := c.Get(ctx, filter); ok {
		t.Fatal("hit after invalidation")
	}

	// 重新写入后在新版本下可命中
	c.Set(ctx, filter, samplePage())
	if _, ok := c.Get(ctx, filter); !ok {
		t.Fatal("miss after re-populating under the new version")
	}
}

func TestDisabledCacheIsInert(t *testing.T) {
	ctx := context.Background()
	filter := store.CompanyFilter{}

	var nilCache *CompanyList
	if _, ok := nilCache.Get(ctx, filter); ok {
		t.Error("nil cache reported a hit")
	}
	nilCache.Set(ctx, filter, samplePage())
	nilCache.Invalidate(ctx)

	kv := newFakeKV()
	zeroTTL := NewCompanyList(kv, 0)
	zeroTTL.Set(ctx, filter, samplePage())
	if kv.sets != 0 {
		t.Error("zero-TTL cache wrote to the backend")
	}
}
