// Package cache holds short-lived read-side caches backed by Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hirely/internal/store"
)

const companyListVersionKey = "companies:list:version"

// companyKV is the minimal Redis surface the cache needs; tests substitute
// fakes.
type companyKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// CompanyList caches ListCompanies pages keyed by filter under a version
// counter. Invalidation bumps the counter, orphaning every cached page at
// once; the TTL reclaims the orphans.
type CompanyList struct {
	kv  companyKV
	ttl time.Duration
}

// NewCompanyList returns a cache with the given TTL. A non-positive TTL
// disables caching entirely.
func NewCompanyList(kv companyKV, ttl time.Duration) *CompanyList {
	return &CompanyList{kv: kv, ttl: ttl}
}

func (c *CompanyList) enabled() bool {
	return c != nil && c.kv != nil && c.ttl > 0
}

func (c *CompanyList) key(ctx context.Context, filter store.CompanyFilter) (string, error) {
	version, err := c.kv.Get(ctx, companyListVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		version = "0"
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("companies:list:v%s:%q:%q:%q:%d:%d",
		version, filter.Search, filter.Location, filter.Industry, filter.Limit, filter.Offset,
	), nil
}

// Get returns the cached page for the filter, if any. Redis failures count
// as cache misses.
func (c *CompanyList) Get(ctx context.Context, filter store.CompanyFilter) (*store.CompanyPage, bool) {
	if !c.enabled() {
		return nil, false
	}

	key, err := c.key(ctx, filter)
	if err != nil {
		return nil, false
	}

	raw, err := c.kv.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var page store.CompanyPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false
	}
	return &page, true
}

// Set stores the page for the filter. Best effort.
func (c *CompanyList) Set(ctx context.Context, filter store.CompanyFilter, page store.CompanyPage) {
	if !c.enabled() {
		return
	}

	key, err := c.key(ctx, filter)
	if err != nil {
		return
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	_ = c.kv.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate orphans every cached page by bumping the version counter.
func (c *CompanyList) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	_ = c.kv.Incr(ctx, companyListVersionKey).Err()
}
