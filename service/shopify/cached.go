package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"lunelle.GO/core/cache"
	"lunelle.GO/model/entity"
)

// CacheTag marks every catalog entry in the in-process cache.
const CacheTag = "catalog"

const redisPrefix = "lunelle:catalog:"

// Catalog is the read side of the Storefront API.
type Catalog interface {
	ListProducts(ctx context.Context, q ProductQuery) (*entity.ProductPage, error)
	GetProduct(ctx context.Context, handle string) (*entity.Product, error)
	ListCollections(ctx context.Context, first int) ([]entity.Collection, error)
}

// CachedCatalog is a read-through cache in front of a Catalog. Redis is used when
// a client is given, the in-process cache otherwise. Errors and missing products
// are never cached. Cart calls do not go through here.
type CachedCatalog struct {
	next  Catalog
	local *cache.Cache
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedCatalog(next Catalog, local *cache.Cache, rdb *redis.Client, ttl time.Duration) *CachedCatalog {
	if local == nil {
		local = cache.GetInstance()
	}
	return &CachedCatalog{next: next, local: local, redis: rdb, ttl: ttl}
}

func (c *CachedCatalog) ListProducts(ctx context.Context, q ProductQuery) (*entity.ProductPage, error) {
	key := fmt.Sprintf("products:%d:%s:%s", q.First, strconv.Quote(q.After), strconv.Quote(q.Query))
	var page entity.ProductPage
	if c.lookup(ctx, key, &page) {
		return &page, nil
	}
	fresh, err := c.next.ListProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, *fresh)
	return fresh, nil
}

func (c *CachedCatalog) GetProduct(ctx context.Context, handle string) (*entity.Product, error) {
	key := "product:" + handle
	var p entity.Product
	if c.lookup(ctx, key, &p) {
		return &p, nil
	}
	fresh, err := c.next.GetProduct(ctx, handle)
	if err != nil || fresh == nil {
		return fresh, err
	}
	c.store(ctx, key, *fresh)
	return fresh, nil
}

func (c *CachedCatalog) ListCollections(ctx context.Context, first int) ([]entity.Collection, error) {
	key := fmt.Sprintf("collections:%d", first)
	var cols []entity.Collection
	if c.lookup(ctx, key, &cols) {
		return cols, nil
	}
	fresh, err := c.next.ListCollections(ctx, first)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

// Flush drops every cached catalog entry and returns how many were removed.
func (c *CachedCatalog) Flush(ctx context.Context) (int, error) {
	n := c.local.DeleteByTag(CacheTag)
	if c.redis == nil {
		return n, nil
	}
	iter := c.redis.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("catalog cache flush: %w", err)
	}
	if len(keys) > 0 {
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			return n, fmt.Errorf("catalog cache flush: %w", err)
		}
	}
	return n + len(keys), nil
}

func (c *CachedCatalog) lookup(ctx context.Context, key string, out interface{}) bool {
	if c.ttl <= 0 {
		return false
	}
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, redisPrefix+key).Bytes()
		if err != nil {
			if err != redis.Nil {
				log.Printf("catalog cache: redis get %s: %v", key, err)
			}
			return false
		}
		return json.Unmarshal(raw, out) == nil
	}
	v, ok := c.local.Get(redisPrefix + key)
	if !ok {
		return false
	}
	raw, ok := v.([]byte)
	return ok && json.Unmarshal(raw, out) == nil
}

// store keeps entries as JSON in both backends so cached values never alias caller state.
func (c *CachedCatalog) store(ctx context.Context, key string, v interface{}) {
	if c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if c.redis != nil {
		if err := c.redis.Set(ctx, redisPrefix+key, raw, c.ttl).Err(); err != nil {
			log.Printf("catalog cache: redis set %s: %v", key, err)
		}
		return
	}
	c.local.SetFor(redisPrefix+key, raw, c.ttl, []string{CacheTag})
}
