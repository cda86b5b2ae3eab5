package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/app"
	"lunelle.GO/app/apptest"
	"lunelle.GO/service/shopify/shopifytest"
)

func withFake(t *testing.T, opts ...apptest.Option) *shopifytest.Server {
	t.Helper()
	fake := shopifytest.NewServer(t)
	fake.AddProducts(
		shopifytest.Product("moon-ring", "Rings", "50.00", true),
		shopifytest.Product("sun-ring", "Rings", "35.00", false),
		shopifytest.SizedProduct("silk-dress", "Dresses", "180.00",
			[]string{"S", "M"}, []string{"Black", "Rose"}, "M/Rose"),
	)
	fake.AddCollections(shopifytest.Collection("rings", "Rings"))
	svc := apptest.New(t, fake, opts...)
	prev := services
	services = func(context.Context) *app.Services { return svc }
	t.Cleanup(func() { services = prev })
	t.Setenv("LUNELLE_HOME", t.TempDir())
	return fake
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	// flags keep their values between Execute calls
	listCategory, listMin, listMax, listSort, listQuery, listAfter = "", "", "", "newest", "", ""
	listFirst = 0
	showOptions = nil
	return out.String(), err
}

func TestProductsList(t *testing.T) {
	fake := withFake(t)
	out, err := run(t, "products:list", "--category", "Rings", "--sort", "price-low")
	require.NoError(t, err)
	assert.Equal(t, "product_type:Rings", fake.LastQuery())
	assert.Less(t, strings.Index(out, "sun-ring"), strings.Index(out, "moon-ring"))
	assert.Contains(t, out, "sold out")
	assert.NotContains(t, out, "silk-dress")
}

func TestProductShow_Options(t *testing.T) {
	withFake(t)
	out, err := run(t, "product:show", "silk-dress", "-o", "Size=M", "-o", "Color=Rose")
	require.NoError(t, err)
	assert.Contains(t, out, "Size: S, M")
	assert.Contains(t, out, "Variant: M / Rose")
	assert.Contains(t, out, "Sold Out")

	_, err = run(t, "product:show", "nope")
	assert.ErrorContains(t, err, "not found")
}

func TestCollectionsAndSearch(t *testing.T) {
	fake := withFake(t)
	out, err := run(t, "collections:list")
	require.NoError(t, err)
	assert.Contains(t, out, "rings")

	out, err = run(t, "search", "moon")
	require.NoError(t, err)
	assert.Contains(t, out, "via storefront")
	assert.Equal(t, "moon", fake.LastQuery())
}

func TestCart_PersistsBetweenRuns(t *testing.T) {
	fake := withFake(t)
	out, err := run(t, "cart:show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	out, err = run(t, "cart:add", "gid://shopify/ProductVariant/moon-ring", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Moon Ring")
	assert.Contains(t, out, "$100.00")

	out, err = run(t, "cart:show")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 2")
	assert.Equal(t, 1, fake.Calls("cartCreate"), "the stored cart id is reused")

	_, err = run(t, "cart:add", "gid://shopify/ProductVariant/moon-ring", "0")
	assert.Error(t, err)
}

func TestNewsletterSubscribe_NotConfigured(t *testing.T) {
	withFake(t)
	_, err := run(t, "newsletter:subscribe", "jane@example.com")
	assert.Error(t, err)

	_, err = run(t, "newsletter:subscribe", "nope")
	assert.ErrorContains(t, err, "valid email")
}

func TestSearchReindex_RequiresHost(t *testing.T) {
	withFake(t)
	_, err := run(t, "search:reindex")
	assert.ErrorContains(t, err, "ELASTICSEARCH_HOST")
}

func TestCacheFlush(t *testing.T) {
	withFake(t)
	out, err := run(t, "cache:flush")
	require.NoError(t, err)
	assert.Contains(t, out, "Flushed")
}
