package catalog

import (
	"context"
	"fmt"
	"sync"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/shopify"
)

// Source is the catalog read side the state objects depend on.
type Source interface {
	ListProducts(ctx context.Context, q shopify.ProductQuery) (*entity.ProductPage, error)
	GetProduct(ctx context.Context, handle string) (*entity.Product, error)
	ListCollections(ctx context.Context, first int) ([]entity.Collection, error)
}

// ListState is a snapshot of a ProductList.
type ListState struct {
	Items       []entity.Product
	Loading     bool
	Err         error
	HasNextPage bool
	EndCursor   string
}

// ProductList holds a paginated, filtered product listing and its loading state.
// Only the latest issued request may change the list: responses of superseded
// requests are dropped.
type ProductList struct {
	src Source

	mu          sync.Mutex
	filter      ProductFilter
	items       []entity.Product
	loading     bool
	err         error
	hasNextPage bool
	endCursor   string
	seq         uint64
}

func NewProductList(src Source, filter ProductFilter) *ProductList {
	return &ProductList{src: src, filter: filter, items: []entity.Product{}}
}

// State returns a copy of the current state.
func (l *ProductList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ListState{
		Items:       append([]entity.Product(nil), l.items...),
		Loading:     l.loading,
		Err:         l.err,
		HasNextPage: l.hasNextPage,
		EndCursor:   l.endCursor,
	}
}

func (l *ProductList) Filter() ProductFilter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Load fetches the first page and replaces the items.
func (l *ProductList) Load(ctx context.Context) error {
	return l.fetch(ctx, false)
}

// SetFilter replaces the filter and reloads. An unchanged filter is a no-op.
func (l *ProductList) SetFilter(ctx context.Context, f ProductFilter) error {
	l.mu.Lock()
	if l.filter.Equal(f) && l.seq > 0 {
		l.mu.Unlock()
		return nil
	}
	l.filter = f
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

// LoadMore appends the next page. It does nothing while a fetch is in flight or
// when there is no further page.
func (l *ProductList) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loading || !l.hasNextPage {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

// Refetch clears the cursor and loads the first page again.
func (l *ProductList) Refetch(ctx context.Context) error {
	l.mu.Lock()
	l.endCursor = ""
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

func (l *ProductList) fetch(ctx context.Context, appending bool) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.loading = true
	l.err = nil
	q := shopify.ProductQuery{First: l.filter.pageSize(), Query: l.filter.SearchQuery()}
	if appending {
		q.After = l.endCursor
	}
	l.mu.Unlock()

	page, err := l.src.ListProducts(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		// superseded by a newer request
		return nil
	}
	l.loading = false
	if err != nil {
		l.err = fmt.Errorf("catalog: list products: %w", err)
		l.items = []entity.Product{}
		l.hasNextPage = false
		return l.err
	}
	if appending {
		l.items = append(l.items, page.Products...)
	} else {
		l.items = append([]entity.Product{}, page.Products...)
	}
	l.hasNextPage = page.HasNextPage
	l.endCursor = page.EndCursor
	return nil
}
