package resolvers

import (
	"context"
	"strings"

	"lunelle.GO/graphql"
	gqlmodels "lunelle.GO/graphql/models"
	"lunelle.GO/service/catalog"
	"lunelle.GO/service/shopify"
)

func intArg(p *int32, def int) int {
	if p != nil && *p > 0 {
		return int(*p)
	}
	return def
}

func strArg(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r *Resolver) Products(ctx context.Context, args graphql.ProductsArgs) (*gqlmodels.ProductConnection, error) {
	filter := catalog.ProductFilter{
		Query:    args.Query,
		Category: strArg(args.Category),
		PriceMin: catalog.ParsePrice(strArg(args.MinPrice)),
		PriceMax: catalog.ParsePrice(strArg(args.MaxPrice)),
		First:    intArg(args.First, r.svc.Config.ProductPageSize),
	}
	page, err := catalog.ListPage(ctx, r.svc.Catalog, filter, strArg(args.After), catalog.ParseSort(strArg(args.Sort)))
	if err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewProductConnection(page), nil
}

// Product returns null for an unknown or empty handle.
func (r *Resolver) Product(ctx context.Context, args graphql.ProductArgs) (*gqlmodels.Product, error) {
	view := catalog.NewProductView(r.svc.Catalog, strings.TrimSpace(args.Handle))
	if err := view.Load(ctx); err != nil {
		return nil, toResolverError(err)
	}
	st := view.State()
	if st.Product == nil {
		return nil, nil
	}
	return gqlmodels.NewProduct(*st.Product), nil
}

func (r *Resolver) Collections(ctx context.Context, args graphql.CollectionsArgs) ([]*gqlmodels.Collection, error) {
	list := catalog.NewCollectionList(r.svc.Catalog, intArg(args.First, shopify.DefaultCollectionPageSize))
	if err := list.Load(ctx); err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewCollections(list.State().Items), nil
}

func (r *Resolver) Search(ctx context.Context, args graphql.SearchArgs) (*gqlmodels.SearchResult, error) {
	q := strings.TrimSpace(args.Query)
	if q == "" {
		return gqlmodels.NewSearchResult(nil, 0, ""), nil
	}
	found, err := r.svc.Search.Find(ctx, r.svc.Catalog, q, strArg(args.Category),
		intArg(args.First, r.svc.Config.ProductPageSize), intArg(args.Offset, 0))
	if err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewSearchResult(found.Products, found.Total, found.Engine), nil
}
