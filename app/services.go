// Package app builds the storefront services from configuration once per process.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"lunelle.GO/config"
	"lunelle.GO/core/cache"
	"lunelle.GO/core/visitor"
	"lunelle.GO/service/cart"
	"lunelle.GO/service/media"
	"lunelle.GO/service/newsletter"
	"lunelle.GO/service/search"
	"lunelle.GO/service/shopify"
)

// Services is everything a request handler, resolver, command or job may need.
type Services struct {
	Config     *config.Config
	Shopify    *shopify.Client
	Catalog    *shopify.CachedCatalog
	Carts      *cart.Provider
	Newsletter *newsletter.Service
	Search     *search.Index
	Media      *media.Resizer
	Cookies    sessions.Store

	DB   *gorm.DB
	Pool *pgxpool.Pool
}

var (
	instance *Services
	initErr  error
	once     sync.Once
)

// Get builds the services from config.AppConfig on first call.
func Get(ctx context.Context) (*Services, error) {
	once.Do(func() {
		config.LoadAppConfig()
		instance, initErr = New(ctx, config.AppConfig)
	})
	return instance, initErr
}

// MustGet is Get for main packages.
func MustGet(ctx context.Context) *Services {
	s, err := Get(ctx)
	if err != nil {
		log.Fatalf("failed to initialize services: %v", err)
	}
	return s
}

// New wires services from cfg. Missing optional backends leave the matching
// service unconfigured instead of failing.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{Config: cfg}

	s.Shopify = shopify.New(shopify.Config{
		StoreDomain: cfg.StoreDomain,
		AccessToken: cfg.StorefrontToken,
		APIVersion:  cfg.APIVersion,
	})
	if !s.Shopify.Configured() {
		log.Println(shopify.Message(shopify.ErrNotConfigured))
	}
	local := cache.GetInstance()
	s.Catalog = shopify.NewCachedCatalog(s.Shopify, local, config.RedisClient, cfg.CatalogCacheTTL)

	var ids cart.KeyedStore = cart.NewCacheStore(local, visitor.CookieLifetime)
	if config.RedisClient != nil {
		ids = cart.NewRedisStore(config.RedisClient, visitor.CookieLifetime)
	}
	opts := []cart.Option{}
	if cfg.SerializeCart {
		opts = append(opts, cart.WithSerializedMutations())
	}
	s.Carts = cart.NewProvider(s.Shopify, ids, cache.NewCache(), cfg.CartSessionTTL, opts...)
	s.Cookies = visitor.NewCookieStore(cfg.SessionSecret, cfg.Env == "production")

	store, err := s.subscriberStore(ctx)
	if err != nil {
		return nil, err
	}
	s.Newsletter = newsletter.NewService(store)

	s.Search, err = search.New(search.Config{Host: cfg.SearchHost, Index: cfg.SearchIndex})
	if err != nil {
		return nil, err
	}
	s.Media = media.NewResizer(cfg.MediaHosts, nil, local, cfg.CatalogCacheTTL*10)
	return s, nil
}

func (s *Services) subscriberStore(ctx context.Context) (newsletter.Store, error) {
	cfg := s.Config
	switch cfg.SubscriberStore {
	case "supabase":
		if rs := newsletter.NewRESTStore(cfg.SupabaseURL, cfg.SupabaseKey, nil); rs != nil {
			return rs, nil
		}
		log.Println("SUPABASE_URL or SUPABASE_ANON_KEY missing, newsletter disabled.")
		return nil, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		s.Pool = pool
		return newsletter.NewPgStore(pool), nil
	case "db":
		db, err := config.NewDB()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		s.DB = db
		return newsletter.NewGormStore(db)
	case "":
		log.Println("No subscriber store configured, newsletter disabled.")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown SUBSCRIBER_STORE %q", cfg.SubscriberStore)
}

// Close releases database connections.
func (s *Services) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
