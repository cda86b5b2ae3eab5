package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/service/catalog"
	"lunelle.GO/service/shopify"
	"lunelle.GO/service/shopify/shopifytest"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductFilter_SearchQuery(t *testing.T) {
	cases := []struct {
		name string
		f    catalog.ProductFilter
		want string
	}{
		{"empty", catalog.ProductFilter{}, ""},
		{"category", catalog.ProductFilter{Category: "Rings"}, "product_type:Rings"},
		{"range", catalog.ProductFilter{PriceMin: price("50"), PriceMax: price("50")}, "variants.price:>=50 AND variants.price:<=50"},
		{"all", catalog.ProductFilter{Category: "Dresses", PriceMin: price("10.5"), PriceMax: price("99")},
			"product_type:Dresses AND variants.price:>=10.5 AND variants.price:<=99"},
		{"raw overrides", catalog.ProductFilter{Query: catalog.Query("title:moon"), Category: "Rings", PriceMin: price("1")}, "title:moon"},
		{"empty raw overrides", catalog.ProductFilter{Query: catalog.Query(""), Category: "Rings"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.f.SearchQuery())
		})
	}
}

func TestParsePrice(t *testing.T) {
	assert.Nil(t, catalog.ParsePrice(""))
	assert.Nil(t, catalog.ParsePrice("abc"))
	assert.Nil(t, catalog.ParsePrice("-3"))
	require.NotNil(t, catalog.ParsePrice(" 49.99 "))
	assert.Equal(t, "49.99", catalog.ParsePrice("49.99").String())
}

func TestProductList_UnfilteredHonorsPageSize(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.RandomProducts(30, "Rings")...)
	list := catalog.NewProductList(fake.Client(), catalog.ProductFilter{})

	require.NoError(t, list.Load(context.Background()))
	st := list.State()
	assert.Len(t, st.Items, 20)
	assert.True(t, st.HasNextPage)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.Equal(t, "", fake.LastQuery())
}

func TestProductList_PriceRangeIsInclusive(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(
		shopifytest.Product("exact-fifty", "Rings", "50.00", true),
		shopifytest.Product("too-cheap", "Rings", "49.99", true),
		shopifytest.Product("too-dear", "Rings", "50.01", true),
	)
	list := catalog.NewProductList(fake.Client(), catalog.ProductFilter{PriceMin: price("50"), PriceMax: price("50")})

	require.NoError(t, list.Load(context.Background()))
	st := list.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "exact-fifty", st.Items[0].Handle)
}

func TestProductList_LoadMoreAppendsAndStops(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.RandomProducts(5, "Rings")...)
	list := catalog.NewProductList(fake.Client(), catalog.ProductFilter{First: 2})
	ctx := context.Background()

	require.NoError(t, list.Load(ctx))
	require.NoError(t, list.LoadMore(ctx))
	require.NoError(t, list.LoadMore(ctx))
	st := list.State()
	assert.Len(t, st.Items, 5)
	assert.False(t, st.HasNextPage)

	calls := fake.Calls("getProducts")
	require.NoError(t, list.LoadMore(ctx))
	assert.Equal(t, calls, fake.Calls("getProducts"), "LoadMore without a next page must not fetch")

	require.NoError(t, list.Refetch(ctx))
	assert.Len(t, list.State().Items, 2, "Refetch replaces with the first page")
}

func TestProductList_ErrorClearsItems(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.RandomProducts(3, "Rings")...)
	list := catalog.NewProductList(fake.Client(), catalog.ProductFilter{})
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))

	fake.FailNext("getProducts", "Throttled")
	err := list.Refetch(ctx)
	require.Error(t, err)
	st := list.State()
	assert.Empty(t, st.Items)
	assert.False(t, st.Loading)
	var ge *shopify.GatewayError
	assert.True(t, errors.As(st.Err, &ge))
	assert.Equal(t, "Throttled", ge.Message)

	require.NoError(t, list.Refetch(ctx))
	assert.Nil(t, list.State().Err, "a later success clears the error")
}

func TestProductList_SetFilterSameIsNoop(t *testing.T) {
	fake := shopifytest.NewServer(t)
	list := catalog.NewProductList(fake.Client(), catalog.ProductFilter{Category: "Rings"})
	ctx := context.Background()

	require.NoError(t, list.SetFilter(ctx, catalog.ProductFilter{Category: "Rings"}))
	require.NoError(t, list.SetFilter(ctx, catalog.ProductFilter{Category: "Rings"}))
	assert.Equal(t, 1, fake.Calls("getProducts"))

	require.NoError(t, list.SetFilter(ctx, catalog.ProductFilter{Category: "Dresses"}))
	assert.Equal(t, 2, fake.Calls("getProducts"))
	assert.Equal(t, "product_type:Dresses", fake.LastQuery())
}

func TestProductList_StaleResponseIsDiscarded(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(
		shopifytest.Product("moon-ring", "Rings", "50.00", true),
		shopifytest.Product("sun-necklace", "Necklaces", "80.00", true),
	)
	list := catalog.NewProductList(fake.Client(), catalog.ProductFilter{Category: "Rings"})
	ctx := context.Background()

	release := fake.Hold("getProducts")
	done := make(chan error, 1)
	go func() { done <- list.Load(ctx) }()
	require.Eventually(t, func() bool { return fake.Calls("getProducts") == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, list.State().Loading)

	require.NoError(t, list.SetFilter(ctx, catalog.ProductFilter{Category: "Necklaces"}))
	release()
	require.NoError(t, <-done)

	st := list.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "sun-necklace", st.Items[0].Handle)
	assert.False(t, st.Loading)
}

func TestProductView(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.Product("moon-ring", "Rings", "50.00", true))
	ctx := context.Background()

	v := catalog.NewProductView(fake.Client(), "moon-ring")
	require.NoError(t, v.Load(ctx))
	st := v.State()
	require.NotNil(t, st.Product)
	assert.False(t, st.NotFound)

	missing := catalog.NewProductView(fake.Client(), "nope")
	require.NoError(t, missing.Load(ctx))
	assert.True(t, missing.State().NotFound)

	empty := catalog.NewProductView(fake.Client(), "")
	require.NoError(t, empty.Load(ctx))
	assert.Equal(t, 2, fake.Calls("getProduct"), "empty handle issues no request")

	fake.FailNext("getProduct", "boom")
	require.Error(t, v.Refetch(ctx))
	st = v.State()
	assert.Nil(t, st.Product)
	assert.False(t, st.NotFound)
}

func TestCollectionList(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddCollections(shopifytest.Collection("rings", "Rings"), shopifytest.Collection("dresses", "Dresses"))
	cols := catalog.NewCollectionList(fake.Client(), 20)

	require.NoError(t, cols.Load(context.Background()))
	assert.Equal(t, []string{"Rings", "Dresses"}, cols.Labels())

	fake.FailNext("getCollections", "boom")
	require.Error(t, cols.Refetch(context.Background()))
	assert.Empty(t, cols.State().Items)
}
