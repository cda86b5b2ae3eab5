package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"lunelle.GO/core/cache"
)

// StorageKey names the persisted cart id.
const StorageKey = "lunelle_cart_id"

// IDStore persists a single cart id. Load returns "" when nothing is stored.
type IDStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, cartID string) error
}

// KeyedStore persists one cart id per visitor.
type KeyedStore interface {
	Load(ctx context.Context, visitorID string) (string, error)
	Save(ctx context.Context, visitorID, cartID string) error
}

// ForKey binds a KeyedStore to one visitor.
func ForKey(ks KeyedStore, visitorID string) IDStore {
	return keyed{ks: ks, visitorID: visitorID}
}

type keyed struct {
	ks        KeyedStore
	visitorID string
}

func (k keyed) Load(ctx context.Context) (string, error) { return k.ks.Load(ctx, k.visitorID) }

func (k keyed) Save(ctx context.Context, id string) error { return k.ks.Save(ctx, k.visitorID, id) }

// FileStore keeps the cart id in a file, for the CLI.
type FileStore struct {
	Path string
}

// DefaultFileStore stores under $LUNELLE_HOME or ~/.lunelle.
func DefaultFileStore() (*FileStore, error) {
	dir := os.Getenv("LUNELLE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cart: locate home directory: %w", err)
		}
		dir = filepath.Join(home, ".lunelle")
	}
	return &FileStore{Path: filepath.Join(dir, StorageKey)}, nil
}

func (f *FileStore) Load(ctx context.Context) (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *FileStore) Save(ctx context.Context, id string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(id+"\n"), 0o600)
}

// RedisStore keeps cart ids in Redis under lunelle_cart_id:<visitor>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store; ttl 0 keeps ids forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, visitorID string) (string, error) {
	id, err := r.client.Get(ctx, StorageKey+":"+visitorID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

func (r *RedisStore) Save(ctx context.Context, visitorID, cartID string) error {
	return r.client.Set(ctx, StorageKey+":"+visitorID, cartID, r.ttl).Err()
}

// CacheStore keeps cart ids in the in-process cache. Ids are lost on restart;
// ttl 0 keeps them until then.
type CacheStore struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewCacheStore(c *cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{c: c, ttl: ttl}
}

func (s *CacheStore) Load(ctx context.Context, visitorID string) (string, error) {
	v, ok := s.c.GetN(StorageKey, visitorID)
	if !ok {
		return "", nil
	}
	return v.(string), nil
}

func (s *CacheStore) Save(ctx context.Context, visitorID, cartID string) error {
	s.c.SetNFor([]interface{}{StorageKey, visitorID}, cartID, s.ttl, []string{StorageKey})
	return nil
}

// Sweep drops expired entries from the backing cache.
func (s *CacheStore) Sweep() int {
	return s.c.Sweep()
}
