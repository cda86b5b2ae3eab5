package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/api"
	_ "lunelle.GO/api/admin"
	_ "lunelle.GO/api/catalog"
	"lunelle.GO/app/apptest"
	"lunelle.GO/service/shopify/shopifytest"
)

func newServer(t *testing.T) (*echo.Echo, *shopifytest.Server) {
	t.Setenv("AUTH_TYPE", "")
	t.Setenv("API_USER", "admin")
	t.Setenv("API_PASS", "secret")
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.Product("moon-ring", "Rings", "50.00", true))
	return api.NewServer(apptest.New(t, fake)), fake
}

func call(e *echo.Echo, method, target string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authed {
		req.SetBasicAuth("admin", "secret")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdmin_RequiresAuth(t *testing.T) {
	e, _ := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/api/admin/cache/flush", false).Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/api/products", false).Code, "storefront stays public")
}

func TestAdmin_CacheFlush(t *testing.T) {
	e, _ := newServer(t)
	rec := call(e, http.MethodPost, "/api/admin/cache/flush", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "catalog")
	assert.Contains(t, body, "media")
}

func TestAdmin_ReindexWithoutSearch(t *testing.T) {
	e, _ := newServer(t)
	rec := call(e, http.MethodPost, "/api/admin/search/reindex", true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
