package config

import (
	"os"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// Shopify Storefront API
	StoreDomain     string
	StorefrontToken string
	APIVersion      string

	// Newsletter subscriber store
	SubscriberStore string // supabase, postgres or db
	SupabaseURL     string
	SupabaseKey     string
	DatabaseURL     string

	SessionSecret   string
	ProductPageSize int
	CatalogCacheTTL time.Duration
	CartSessionTTL  time.Duration
	// SerializeCart queues cart mutations of one visitor instead of letting the last response win.
	SerializeCart   bool
	MediaHosts      []string

	SearchHost  string
	SearchIndex string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName: GetEnv("APP_NAME", "Lunelle"),
			Port:    GetEnv("PORT", "8080"),
			Env:     os.Getenv("APP_ENV"),
			Debug:   os.Getenv("DEBUG") == "true",

			StoreDomain:     os.Getenv("SHOPIFY_STORE_DOMAIN"),
			StorefrontToken: os.Getenv("SHOPIFY_STOREFRONT_ACCESS_TOKEN"),
			APIVersion:      GetEnv("SHOPIFY_API_VERSION", "2024-01"),

			SubscriberStore: subscriberStore(),
			SupabaseURL:     os.Getenv("SUPABASE_URL"),
			SupabaseKey:     os.Getenv("SUPABASE_ANON_KEY"),
			DatabaseURL:     os.Getenv("DATABASE_URL"),

			SessionSecret:   GetEnv("SESSION_SECRET", "lunelle-dev-secret-change-me"),
			ProductPageSize: GetEnvInt("PRODUCT_PAGE_SIZE", 20),
			CatalogCacheTTL: GetEnvSeconds("CATALOG_CACHE_TTL", 60*time.Second),
			CartSessionTTL:  GetEnvSeconds("CART_SESSION_TTL", 24*time.Hour),
			SerializeCart:   GetEnv("CART_SERIALIZE_MUTATIONS", "true") == "true",
			MediaHosts:      GetEnvList("MEDIA_ALLOWED_HOSTS", []string{"cdn.shopify.com"}),

			SearchHost:  os.Getenv("ELASTICSEARCH_HOST"),
			SearchIndex: GetEnv("ELASTICSEARCH_INDEX", "lunelle_products"),
		}
	})
}

// subscriberStore picks the explicit SUBSCRIBER_STORE or infers it from what is configured.
func subscriberStore() string {
	if s := os.Getenv("SUBSCRIBER_STORE"); s != "" {
		return s
	}
	if os.Getenv("SUPABASE_URL") != "" {
		return "supabase"
	}
	if os.Getenv("DATABASE_URL") != "" {
		return "postgres"
	}
	return ""
}

// ShopifyConfigured reports whether storefront credentials are present.
func (c *Config) ShopifyConfigured() bool {
	return c.StoreDomain != "" && c.StorefrontToken != ""
}
