package search_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/service/search"
	"lunelle.GO/service/shopify/shopifytest"
)

// fakeES understands the handful of endpoints the Index uses.
type fakeES struct {
	mu      sync.Mutex
	created bool
	docs    map[string]search.Document
	order   []string
	bulks   int
}

func newFakeES(t *testing.T) (*fakeES, *httptest.Server) {
	f := &fakeES{docs: map[string]search.Document{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeES) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/products":
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/products":
		f.created = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.URL.Path == "/_bulk":
		f.bulks++
		var items []interface{}
		sc := bufio.NewScanner(r.Body)
		sc.Buffer(make([]byte, 1<<20), 1<<20)
		for sc.Scan() {
			var meta struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			_ = json.Unmarshal(sc.Bytes(), &meta)
			if !sc.Scan() {
				break
			}
			var doc search.Document
			_ = json.Unmarshal(sc.Bytes(), &doc)
			if _, seen := f.docs[meta.Index.ID]; !seen {
				f.order = append(f.order, meta.Index.ID)
			}
			f.docs[meta.Index.ID] = doc
			items = append(items, map[string]interface{}{"index": map[string]interface{}{"_id": meta.Index.ID, "status": 201}})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": false, "items": items})
	case r.URL.Path == "/products/_search":
		var body struct {
			Size  int `json:"size"`
			Query struct {
				Bool struct {
					Must []struct {
						MultiMatch struct {
							Query string `json:"query"`
						} `json:"multi_match"`
					} `json:"must"`
					Filter []struct {
						Term map[string]string `json:"term"`
					} `json:"filter"`
				} `json:"bool"`
			} `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		q := strings.ToLower(body.Query.Bool.Must[0].MultiMatch.Query)
		category := ""
		if len(body.Query.Bool.Filter) > 0 {
			category = body.Query.Bool.Filter[0].Term["product_type.raw"]
		}
		var hits []interface{}
		for _, id := range f.order {
			d := f.docs[id]
			if category != "" && d.ProductType != category {
				continue
			}
			text := strings.ToLower(d.Title + " " + d.ProductType + " " + d.Description)
			if strings.Contains(text, q) {
				hits = append(hits, map[string]interface{}{"_id": id, "_source": map[string]string{"handle": d.Handle}})
			}
		}
		total := len(hits)
		if body.Size > 0 && len(hits) > body.Size {
			hits = hits[:body.Size]
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"total": map[string]int{"value": total}, "hits": hits},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no handler"}`))
	}
}

func TestIndex_NotConfigured(t *testing.T) {
	ix, err := search.New(search.Config{})
	require.NoError(t, err)
	assert.False(t, ix.Configured())
	_, err = ix.Search(context.Background(), "ring", "", 0, 0)
	assert.ErrorIs(t, err, search.ErrNotConfigured)
	_, err = ix.IndexProducts(context.Background(), nil)
	assert.ErrorIs(t, err, search.ErrNotConfigured)
}

func TestIndex_ReindexAndSearch(t *testing.T) {
	es, srv := newFakeES(t)
	ix, err := search.New(search.Config{Host: srv.URL, Index: "products"})
	require.NoError(t, err)

	shop := shopifytest.NewServer(t)
	for i := 0; i < 140; i++ {
		shop.AddProducts(shopifytest.Product(fmt.Sprintf("silk-dress-%d", i), "Dresses", "30.00", true))
	}
	shop.AddProducts(
		shopifytest.Product("crescent-moon-ring", "Rings", "50.00", true),
		shopifytest.Product("moonstone-earrings", "Earrings", "80.00", true),
	)

	n, err := ix.Reindex(context.Background(), shop.Client())
	require.NoError(t, err)
	assert.Equal(t, 142, n)
	assert.Equal(t, 2, es.bulks)
	assert.True(t, es.created)
	assert.Equal(t, 2, shop.Calls("getProducts"))

	res, err := ix.Search(context.Background(), "moon", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"crescent-moon-ring", "moonstone-earrings"}, res.Handles)

	res, err = ix.Search(context.Background(), "moon", "Rings", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"crescent-moon-ring"}, res.Handles)
}

func TestIndex_EnsureIndexIsIdempotent(t *testing.T) {
	_, srv := newFakeES(t)
	ix, err := search.New(search.Config{Host: srv.URL, Index: "products"})
	require.NoError(t, err)
	require.NoError(t, ix.EnsureIndex(context.Background()))
	require.NoError(t, ix.EnsureIndex(context.Background()))
}

func TestHydrate_KeepsOrderAndSkipsMissing(t *testing.T) {
	shop := shopifytest.NewServer(t)
	shop.AddProducts(
		shopifytest.Product("a-ring", "Rings", "10.00", true),
		shopifytest.Product("b-ring", "Rings", "20.00", true),
	)
	got, err := search.Hydrate(context.Background(), shop.Client(), []string{"b-ring", "gone", "a-ring"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b-ring", got[0].Handle)
	assert.Equal(t, "a-ring", got[1].Handle)
}

func TestNewDocument(t *testing.T) {
	d := search.NewDocument(shopifytest.Product("moon-ring", "Rings", "49.99", false))
	assert.Equal(t, "moon-ring", d.Handle)
	assert.Equal(t, "Moon Ring", d.Title)
	assert.InDelta(t, 49.99, d.Price, 0.001)
	assert.False(t, d.AvailableForSale)
}

func TestFind_UsesIndexThenHydrates(t *testing.T) {
	_, srv := newFakeES(t)
	ix, err := search.New(search.Config{Host: srv.URL, Index: "products"})
	require.NoError(t, err)
	shop := shopifytest.NewServer(t)
	shop.AddProducts(
		shopifytest.Product("crescent-moon-ring", "Rings", "50.00", true),
		shopifytest.Product("sun-necklace", "Necklaces", "80.00", true),
	)
	_, err = ix.Reindex(context.Background(), shop.Client())
	require.NoError(t, err)

	found, err := ix.Find(context.Background(), shop.Client(), "moon", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, search.EngineElasticsearch, found.Engine)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "crescent-moon-ring", found.Products[0].Handle)
}

func TestFind_FallsBackToStorefront(t *testing.T) {
	ix, err := search.New(search.Config{})
	require.NoError(t, err)
	shop := shopifytest.NewServer(t)
	shop.AddProducts(
		shopifytest.Product("moon-ring", "Rings", "50.00", true),
		shopifytest.Product("moon-dress", "Dresses", "90.00", true),
	)

	found, err := ix.Find(context.Background(), shop.Client(), "moon", "Rings", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, search.EngineStorefront, found.Engine)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "moon-ring", found.Products[0].Handle)
	assert.Equal(t, "moon AND product_type:Rings", shop.LastQuery())
}
