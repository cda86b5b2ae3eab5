package availability_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/api"
	_ "lunelle.GO/api/availability"
	_ "lunelle.GO/api/catalog"
	"lunelle.GO/app/apptest"
	"lunelle.GO/service/shopify/shopifytest"
)

type body struct {
	Products []struct {
		Handle           string `json:"handle"`
		AvailableForSale bool   `json:"availableForSale"`
		Variants         []struct {
			ID               string `json:"id"`
			AvailableForSale bool   `json:"availableForSale"`
		} `json:"variants"`
	} `json:"products"`
	NotFound []string `json:"notFound"`
	Error    string   `json:"error"`
}

func get(t *testing.T, fake *shopifytest.Server, target string) (int, body) {
	t.Helper()
	e := api.NewServer(apptest.New(t, fake))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var out body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestAvailability_OrderAndMissing(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(
		shopifytest.Product("moon-ring", "Rings", "50.00", true),
		shopifytest.SizedProduct("silk-dress", "Dresses", "180.00", []string{"M"}, []string{"Rose"}, "M/Rose"),
	)

	code, out := get(t, fake, "/api/availability?handles=silk-dress,nope,moon-ring,silk-dress")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, out.Products, 2)
	assert.Equal(t, "silk-dress", out.Products[0].Handle)
	assert.False(t, out.Products[0].Variants[0].AvailableForSale)
	assert.Equal(t, "moon-ring", out.Products[1].Handle)
	assert.Equal(t, []string{"nope"}, out.NotFound)
	assert.Equal(t, 3, fake.Calls("getProduct"), "duplicates are fetched once")
}

func TestAvailability_BypassesCatalogCache(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.Product("moon-ring", "Rings", "50.00", true))

	get(t, fake, "/api/availability?handles=moon-ring")
	get(t, fake, "/api/availability?handles=moon-ring")
	assert.Equal(t, 2, fake.Calls("getProduct"))
}

func TestAvailability_Errors(t *testing.T) {
	fake := shopifytest.NewServer(t)
	code, out := get(t, fake, "/api/availability")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "handles required", out.Error)

	fake.FailNext("getProduct", "Throttled")
	code, out = get(t, fake, "/api/availability?handles=moon-ring")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Throttled", out.Error)
}
