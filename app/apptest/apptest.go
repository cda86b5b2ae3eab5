// Package apptest wires app.Services around a fake storefront for handler tests.
package apptest

import (
	"testing"
	"time"

	"lunelle.GO/app"
	"lunelle.GO/config"
	"lunelle.GO/core/cache"
	"lunelle.GO/core/visitor"
	"lunelle.GO/service/cart"
	"lunelle.GO/service/media"
	"lunelle.GO/service/newsletter"
	"lunelle.GO/service/search"
	"lunelle.GO/service/shopify"
	"lunelle.GO/service/shopify/shopifytest"
)

// Option adjusts the services before they are returned.
type Option func(*app.Services)

// WithSubscribers configures the newsletter with store.
func WithSubscribers(store newsletter.Store) Option {
	return func(s *app.Services) { s.Newsletter = newsletter.NewService(store) }
}

// WithSearch replaces the unconfigured search index.
func WithSearch(ix *search.Index) Option {
	return func(s *app.Services) { s.Search = ix }
}

// WithMediaHosts allows the resizer to fetch from hosts.
func WithMediaHosts(hosts ...string) Option {
	return func(s *app.Services) { s.Media = media.NewResizer(hosts, nil, cache.NewCache(), time.Minute) }
}

// New builds services backed by fake. Nothing is cached between calls and the
// newsletter is unconfigured unless WithSubscribers is given.
func New(t testing.TB, fake *shopifytest.Server, opts ...Option) *app.Services {
	t.Helper()
	cfg := &config.Config{
		AppName:         "Lunelle",
		Env:             "test",
		SessionSecret:   "test-session-secret",
		ProductPageSize: shopify.DefaultProductPageSize,
		CartSessionTTL:  time.Hour,
		SerializeCart:   true,
	}
	client := fake.Client()
	ix, err := search.New(search.Config{})
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	s := &app.Services{
		Config:     cfg,
		Shopify:    client,
		Catalog:    shopify.NewCachedCatalog(client, cache.NewCache(), nil, 0),
		Carts:      cart.NewProvider(client, cart.NewCacheStore(cache.NewCache(), 0), nil, cfg.CartSessionTTL, cart.WithSerializedMutations()),
		Newsletter: newsletter.NewService(nil),
		Search:     ix,
		Media:      media.NewResizer(nil, nil, cache.NewCache(), time.Minute),
		Cookies:    visitor.NewCookieStore(cfg.SessionSecret, false),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
