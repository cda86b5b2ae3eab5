package catalog

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/shopify"
)

// MaxShopPages caps how many pages a single shop render accumulates.
const MaxShopPages = 10

// ShopQuery is the listing as addressed by the shop URL.
type ShopQuery struct {
	Query    *string
	Category string
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	Sort     SortOption
	Pages    int
	PageSize int
}

func (q ShopQuery) Filter() ProductFilter {
	return ProductFilter{Query: q.Query, Category: q.Category, PriceMin: q.Min, PriceMax: q.Max, First: q.PageSize}
}

// Shop is everything the shop listing renders.
type Shop struct {
	Products    []entity.Product
	HasNextPage bool
	Categories  []string
	Err         error
}

// LoadShop loads Pages pages of the filtered listing (each further page through
// LoadMore) and the category labels concurrently. A failing category lookup only
// hides the labels; a failing listing is returned in Shop.Err.
func LoadShop(ctx context.Context, src Source, q ShopQuery) *Shop {
	pages := q.Pages
	if pages < 1 {
		pages = 1
	}
	if pages > MaxShopPages {
		pages = MaxShopPages
	}
	list := NewProductList(src, q.Filter())
	cols := NewCollectionList(src, 0)

	var g errgroup.Group
	g.Go(func() error {
		if err := list.Load(ctx); err != nil {
			return nil
		}
		for i := 1; i < pages && list.State().HasNextPage; i++ {
			if err := list.LoadMore(ctx); err != nil {
				return nil
			}
		}
		return nil
	})
	g.Go(func() error {
		if err := cols.Load(ctx); err != nil {
			log.Printf("catalog: category labels unavailable: %v", err)
		}
		return nil
	})
	_ = g.Wait()

	st := list.State()
	shop := &Shop{Err: st.Err, HasNextPage: st.HasNextPage, Categories: cols.Labels()}
	if st.Err == nil {
		shop.Products = SortProducts(FilterByPrice(st.Items, q.Min, q.Max), q.Sort)
	}
	return shop
}

// ListPage fetches the page after the cursor and applies the client-side price
// filter and sort. Unlike LoadShop it holds no state between calls.
func ListPage(ctx context.Context, src Source, f ProductFilter, after string, by SortOption) (*entity.ProductPage, error) {
	page, err := src.ListProducts(ctx, shopify.ProductQuery{First: f.pageSize(), After: after, Query: f.SearchQuery()})
	if err != nil {
		return nil, err
	}
	out := *page
	out.Products = SortProducts(FilterByPrice(page.Products, f.PriceMin, f.PriceMax), by)
	return &out, nil
}

// Detail is everything the product page renders.
type Detail struct {
	ProductState
	Related []entity.Product
}

// LoadDetail loads the product and a handful of related products concurrently.
// Related products prefer the same product type; they are best effort.
func LoadDetail(ctx context.Context, src Source, handle string, related int) *Detail {
	view := NewProductView(src, handle)
	list := NewProductList(src, ProductFilter{First: related + 4})

	var g errgroup.Group
	g.Go(func() error { _ = view.Load(ctx); return nil })
	g.Go(func() error { _ = list.Load(ctx); return nil })
	_ = g.Wait()

	d := &Detail{ProductState: view.State()}
	if d.Product == nil {
		return d
	}
	items := list.State().Items
	same := make([]entity.Product, 0, len(items))
	other := make([]entity.Product, 0, len(items))
	for _, p := range items {
		if d.Product.ProductType != "" && p.ProductType == d.Product.ProductType {
			same = append(same, p)
		} else {
			other = append(other, p)
		}
	}
	d.Related = RelatedProducts(append(same, other...), handle, related)
	return d
}
