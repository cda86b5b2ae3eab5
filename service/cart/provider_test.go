package cart_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/core/cache"
	"lunelle.GO/service/cart"
)

func TestProvider_OneSessionPerVisitor(t *testing.T) {
	fake := newFake(t)
	p := cart.NewProvider(fake.Client(), cart.NewCacheStore(cache.NewCache(), 0), cache.NewCache(), time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	got := make([]*cart.Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = p.Session(ctx, "visitor-a")
		}(i)
	}
	wg.Wait()
	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, fake.Calls("cartCreate"))

	other := p.Session(ctx, "visitor-b")
	assert.NotSame(t, got[0], other)
	assert.NotEqual(t, got[0].CartID(), other.CartID())
	assert.Equal(t, 2, p.Len())
}

func TestProvider_MutationVisibleToEveryConsumer(t *testing.T) {
	fake := newFake(t)
	p := cart.NewProvider(fake.Client(), cart.NewCacheStore(cache.NewCache(), 0), nil, time.Hour)
	ctx := context.Background()

	badge := p.Session(ctx, "visitor")
	detail := p.Session(ctx, "visitor")
	require.NoError(t, detail.AddItem(ctx, moonRing, 3))
	assert.Equal(t, 3, badge.ItemCount())
}

func TestProvider_ExpiredSessionIsRebuiltFromStoredID(t *testing.T) {
	fake := newFake(t)
	ids := cart.NewCacheStore(cache.NewCache(), 0)
	p := cart.NewProvider(fake.Client(), ids, cache.NewCache(), 10*time.Millisecond)
	ctx := context.Background()

	first := p.Session(ctx, "visitor")
	require.NoError(t, first.AddItem(ctx, moonRing, 1))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, p.Sweep())
	_, ok := p.Peek("visitor")
	assert.False(t, ok)

	second := p.Session(ctx, "visitor")
	assert.NotSame(t, first, second)
	assert.Equal(t, first.CartID(), second.CartID())
	assert.Equal(t, 1, second.ItemCount())
	assert.Equal(t, 1, fake.Calls("cartCreate"))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := cart.NewRedisStore(rdb, time.Hour)
	ctx := context.Background()

	id, err := store.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.Save(ctx, "v1", "gid://shopify/Cart/c1"))
	id, err = store.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/c1", id)
	assert.True(t, mr.Exists(cart.StorageKey+":v1"))
	assert.Equal(t, time.Hour, mr.TTL(cart.StorageKey+":v1"))
}

func TestProvider_SweepDropsExpiredCartIDs(t *testing.T) {
	fake := newFake(t)
	ids := cart.NewCacheStore(cache.NewCache(), 10*time.Millisecond)
	p := cart.NewProvider(fake.Client(), ids, cache.NewCache(), 10*time.Millisecond)
	ctx := context.Background()

	for _, v := range []string{"v1", "v2", "v3"} {
		require.NotEmpty(t, p.Session(ctx, v).CartID())
	}
	id, err := ids.Load(ctx, "v1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, p.Sweep())
	assert.Zero(t, ids.Sweep(), "ids already swept with the sessions")
	for _, v := range []string{"v1", "v2", "v3"} {
		id, err := ids.Load(ctx, v)
		require.NoError(t, err)
		assert.Empty(t, id)
	}
}

func TestRedisStore_CartIDsExpire(t *testing.T) {
	fake := newFake(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	p := cart.NewProvider(fake.Client(), cart.NewRedisStore(rdb, 24*time.Hour), nil, time.Hour)
	require.NotEmpty(t, p.Session(context.Background(), "visitor").CartID())
	assert.Equal(t, 24*time.Hour, mr.TTL(cart.StorageKey+":visitor"))

	mr.FastForward(25 * time.Hour)
	assert.False(t, mr.Exists(cart.StorageKey+":visitor"))
}

func TestRedisStore_BacksProvider(t *testing.T) {
	fake := newFake(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	p := cart.NewProvider(fake.Client(), cart.NewRedisStore(rdb, 0), nil, time.Hour)
	s := p.Session(context.Background(), "visitor")

	stored, err := mr.Get(cart.StorageKey + ":visitor")
	require.NoError(t, err)
	assert.Equal(t, s.CartID(), stored)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", cart.StorageKey)
	store := &cart.FileStore{Path: path}
	ctx := context.Background()

	id, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.Save(ctx, "gid://shopify/Cart/c9"))
	id, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/c9", id)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDefaultFileStore_UsesLunelleHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LUNELLE_HOME", dir)
	store, err := cart.DefaultFileStore()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, cart.StorageKey), store.Path)
}
