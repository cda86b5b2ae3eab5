package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a thread-safe TTL key-value store with tag based invalidation.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to the set of keys carrying it
	tagIndex sync.Map // map[string]*sync.Map
	// keyTags maps key to the tags it was stored with, so Delete can untag
	keyTags sync.Map // map[interface{}][]string
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix timestamp in nanoseconds; 0 means no expiration
}

func (i cacheItem) expired(now int64) bool {
	return i.ExpiresAt > 0 && now > i.ExpiresAt
}

// Set stores a value for a key with an optional TTL (in seconds) and optional tags.
// If ttl is 0, the value does not expire.
func (c *Cache) Set(key, value interface{}, ttl int64, tags []string) {
	c.SetFor(key, value, time.Duration(ttl)*time.Second, tags)
}

// SetFor is Set with a time.Duration TTL.
func (c *Cache) SetFor(key, value interface{}, ttl time.Duration, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get retrieves a value for a key. Returns (value, true) if found and not expired, (nil, false) otherwise.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(cacheItem)
	if item.expired(time.Now().UnixNano()) {
		c.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// GetOrDefault returns the value if found, otherwise the default value.
func (c *Cache) GetOrDefault(key, defaultValue interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return defaultValue
}

// Delete removes a key from the cache and from every tag it carried.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
	if tags, ok := c.keyTags.LoadAndDelete(key); ok {
		for _, tag := range tags.([]string) {
			if val, ok := c.tagIndex.Load(tag); ok {
				val.(*sync.Map).Delete(key)
			}
		}
	}
}

// DeleteMany removes multiple keys from the cache.
func (c *Cache) DeleteMany(keys ...interface{}) {
	for _, key := range keys {
		c.Delete(key)
	}
}

func makeCompositeKey(keys ...interface{}) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return strings.Join(parts, "|")
}

// SetN stores a value for a composite key with an optional TTL (in seconds) and optional tags.
func (c *Cache) SetN(keys []interface{}, value interface{}, ttl int64, tags []string) {
	c.Set(makeCompositeKey(keys...), value, ttl, tags)
}

// SetNFor is SetN with a time.Duration TTL.
func (c *Cache) SetNFor(keys []interface{}, value interface{}, ttl time.Duration, tags []string) {
	c.SetFor(makeCompositeKey(keys...), value, ttl, tags)
}

// GetN retrieves a value for a composite key.
func (c *Cache) GetN(keys ...interface{}) (interface{}, bool) {
	return c.Get(makeCompositeKey(keys...))
}

func (c *Cache) DeleteN(keys ...interface{}) {
	c.Delete(makeCompositeKey(keys...))
}

// TagKey assigns one or more tags to a cache key.
func (c *Cache) TagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		val, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		val.(*sync.Map).Store(key, struct{}{})
	}
	existing, _ := c.keyTags.Load(key)
	merged, _ := existing.([]string)
	for _, tag := range tags {
		if !contains(merged, tag) {
			merged = append(merged, tag)
		}
	}
	c.keyTags.Store(key, merged)
}

// UntagKey removes one or more tags from a cache key.
func (c *Cache) UntagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		if val, ok := c.tagIndex.Load(tag); ok {
			val.(*sync.Map).Delete(key)
		}
	}
	if existing, ok := c.keyTags.Load(key); ok {
		var kept []string
		for _, t := range existing.([]string) {
			if !contains(tags, t) {
				kept = append(kept, t)
			}
		}
		c.keyTags.Store(key, kept)
	}
}

// GetKeysByTag returns all keys assigned to a tag.
func (c *Cache) GetKeysByTag(tag string) []interface{} {
	var keys []interface{}
	if val, ok := c.tagIndex.Load(tag); ok {
		val.(*sync.Map).Range(func(key, _ interface{}) bool {
			keys = append(keys, key)
			return true
		})
	}
	return keys
}

// DeleteByTag deletes all cache entries assigned to a tag and returns how many were removed.
func (c *Cache) DeleteByTag(tag string) int {
	n := 0
	for _, key := range c.GetKeysByTag(tag) {
		c.Delete(key)
		n++
	}
	c.tagIndex.Delete(tag)
	return n
}

// IterateFilter returns the live values for which filter returns true.
func (c *Cache) IterateFilter(filter func(key, value interface{}) bool) []interface{} {
	now := time.Now().UnixNano()
	var results []interface{}
	c.m.Range(func(key, value interface{}) bool {
		item := value.(cacheItem)
		if item.expired(now) {
			return true
		}
		if filter(key, item.Value) {
			results = append(results, item.Value)
		}
		return true
	})
	return results
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := time.Now().UnixNano()
	var expired []interface{}
	c.m.Range(func(key, value interface{}) bool {
		if value.(cacheItem).expired(now) {
			expired = append(expired, key)
		}
		return true
	})
	c.DeleteMany(expired...)
	return len(expired)
}

// Len counts entries, expired ones included until swept.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
