package cron

import (
	"context"
	"log"
	"time"

	"lunelle.GO/app"
	"lunelle.GO/service/shopify"
)

const jobTimeout = 5 * time.Minute

func init() {
	Register("catalogwarmup", "@every 15m", runWith(WarmCatalog))
	Register("searchindex", "@hourly", runWith(func(ctx context.Context, svc *app.Services) error {
		n, err := ReindexSearch(ctx, svc)
		if err == nil {
			log.Printf("cron: searchindex indexed %d products", n)
		}
		return err
	}))
	Register("cartsweep", "@every 10m", runWith(func(_ context.Context, svc *app.Services) error {
		if n := svc.Carts.Sweep(); n > 0 {
			log.Printf("cron: cartsweep dropped %d idle cart sessions", n)
		}
		return nil
	}))
}

func runWith(fn func(context.Context, *app.Services) error) func(...string) {
	return func(...string) {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := fn(ctx, app.MustGet(ctx)); err != nil {
			log.Printf("cron: %v", err)
		}
	}
}

// WarmCatalog drops cached catalog responses and refills the first product
// page and the collection list.
func WarmCatalog(ctx context.Context, svc *app.Services) error {
	if _, err := svc.Catalog.Flush(ctx); err != nil {
		return err
	}
	if _, err := svc.Catalog.ListProducts(ctx, shopify.ProductQuery{First: svc.Config.ProductPageSize}); err != nil {
		return err
	}
	_, err := svc.Catalog.ListCollections(ctx, shopify.DefaultCollectionPageSize)
	return err
}

// ReindexSearch rebuilds the product search index. It is a no-op without a search host.
func ReindexSearch(ctx context.Context, svc *app.Services) (int, error) {
	if !svc.Search.Configured() {
		return 0, nil
	}
	if err := svc.Search.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	return svc.Search.Reindex(ctx, svc.Shopify)
}
