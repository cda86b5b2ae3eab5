// Package search mirrors the storefront catalog into Elasticsearch for free-text
// product search. The index only stores what search needs; product pages are
// always rendered from the Storefront API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/sync/errgroup"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/shopify"
)

var ErrNotConfigured = errors.New("elasticsearch not configured")

const (
	DefaultPageSize = 20
	reindexPageSize = 100
)

type Config struct {
	Host      string
	Index     string
	Transport http.RoundTripper
}

// Index is one Elasticsearch index of products keyed by handle.
type Index struct {
	client *elasticsearch.Client
	name   string
}

// New returns an unconfigured Index when Host is empty; every call on it fails with ErrNotConfigured.
func New(cfg Config) (*Index, error) {
	ix := &Index{name: cfg.Index}
	if ix.name == "" {
		ix.name = "lunelle_products"
	}
	if cfg.Host == "" {
		return ix, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Host},
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	ix.client = client
	return ix, nil
}

func (ix *Index) Configured() bool {
	return ix != nil && ix.client != nil
}

func (ix *Index) Name() string { return ix.name }

// Document is the indexed form of a product.
type Document struct {
	Handle           string   `json:"handle"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ProductType      string   `json:"product_type"`
	Vendor           string   `json:"vendor"`
	Tags             []string `json:"tags"`
	Price            float64  `json:"price"`
	AvailableForSale bool     `json:"available_for_sale"`
}

func NewDocument(p entity.Product) Document {
	price, _ := p.Price.Amount.Float64()
	return Document{
		Handle:           p.Handle,
		Title:            p.Title,
		Description:      p.Description,
		ProductType:      p.ProductType,
		Vendor:           p.Vendor,
		Tags:             p.Tags,
		Price:            price,
		AvailableForSale: p.AvailableForSale,
	}
}

const mapping = `{
  "mappings": {
    "properties": {
      "handle":             {"type": "keyword"},
      "title":              {"type": "text"},
      "description":        {"type": "text"},
      "product_type":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "vendor":             {"type": "keyword"},
      "tags":               {"type": "text"},
      "price":              {"type": "scaled_float", "scaling_factor": 100},
      "available_for_sale": {"type": "boolean"}
    }
  }
}`

// EnsureIndex creates the index with its mapping unless it exists.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	if !ix.Configured() {
		return ErrNotConfigured
	}
	res, err := ix.client.Indices.Exists([]string{ix.name}, ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	drain(res.Body)
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = ix.client.Indices.Create(ix.name,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// IndexProducts upserts products with one bulk request and returns how many were accepted.
func (ix *Index) IndexProducts(ctx context.Context, products []entity.Product) (int, error) {
	if !ix.Configured() {
		return 0, ErrNotConfigured
	}
	if len(products) == 0 {
		return 0, nil
	}
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, p := range products {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": ix.name, "_id": p.Handle}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		if err := enc.Encode(NewDocument(p)); err != nil {
			return 0, err
		}
	}

	res, err := ix.client.Bulk(bytes.NewReader(body.Bytes()),
		ix.client.Bulk.WithContext(ctx),
		ix.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var bulk struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return 0, err
	}
	ok := 0
	for _, item := range bulk.Items {
		for _, r := range item {
			if r.Status >= 300 {
				log.Printf("search: index failed: %s", r.Error.Reason)
				continue
			}
			ok++
		}
	}
	return ok, nil
}

// Result is one page of search hits, best match first.
type Result struct {
	Handles []string
	Total   int
}

// Search runs a free-text match over title, product type, description and tags.
// A non-empty category restricts hits to that product type.
func (ix *Index) Search(ctx context.Context, query, category string, size, from int) (*Result, error) {
	if !ix.Configured() {
		return nil, ErrNotConfigured
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	boolQuery := map[string]interface{}{
		"must": []map[string]interface{}{
			{
				"multi_match": map[string]interface{}{
					"query":     query,
					"fields":    []string{"title^3", "product_type^2", "description", "tags"},
					"fuzziness": "AUTO",
				},
			},
		},
	}
	if category != "" {
		boolQuery["filter"] = []map[string]interface{}{
			{"term": map[string]interface{}{"product_type.raw": category}},
		}
	}
	body := map[string]interface{}{
		"from":    from,
		"size":    size,
		"_source": []string{"handle"},
		"query":   map[string]interface{}{"bool": boolQuery},
	}
	bodyBytes, _ := json.Marshal(body)

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.name),
		ix.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					Handle string `json:"handle"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}
	out := &Result{Total: esResp.Hits.Total.Value, Handles: make([]string, 0, len(esResp.Hits.Hits))}
	for _, hit := range esResp.Hits.Hits {
		if hit.Source.Handle != "" {
			out.Handles = append(out.Handles, hit.Source.Handle)
		}
	}
	return out, nil
}

// Reindex walks the whole catalog page by page and indexes every product.
func (ix *Index) Reindex(ctx context.Context, src shopify.Catalog) (int, error) {
	if !ix.Configured() {
		return 0, ErrNotConfigured
	}
	if err := ix.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	total := 0
	q := shopify.ProductQuery{First: reindexPageSize}
	for {
		page, err := src.ListProducts(ctx, q)
		if err != nil {
			return total, fmt.Errorf("search: reindex: %w", err)
		}
		n, err := ix.IndexProducts(ctx, page.Products)
		total += n
		if err != nil {
			return total, fmt.Errorf("search: reindex: %w", err)
		}
		if !page.HasNextPage || page.EndCursor == "" {
			return total, nil
		}
		q.After = page.EndCursor
	}
}

// Hydrate loads the products behind a result from src, concurrently, keeping hit order.
// Handles that no longer exist are skipped.
func Hydrate(ctx context.Context, src shopify.Catalog, handles []string) ([]entity.Product, error) {
	found := make([]*entity.Product, len(handles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, handle := range handles {
		g.Go(func() error {
			p, err := src.GetProduct(gctx, handle)
			if err != nil {
				return err
			}
			found[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: hydrate: %w", err)
	}
	out := make([]entity.Product, 0, len(found))
	for _, p := range found {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Engines reported by Find.
const (
	EngineElasticsearch = "elasticsearch"
	EngineStorefront    = "storefront"
)

// Found is a hydrated search result.
type Found struct {
	Products []entity.Product
	Total    int
	Engine   string
}

// Find searches the index and hydrates the hits from src. Without an index it
// falls back to the storefront's own product search, which has no offset.
func (ix *Index) Find(ctx context.Context, src shopify.Catalog, query, category string, size, from int) (*Found, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if !ix.Configured() {
		q := query
		if category != "" {
			q += " AND product_type:" + category
		}
		page, err := src.ListProducts(ctx, shopify.ProductQuery{First: size, Query: q})
		if err != nil {
			return nil, err
		}
		return &Found{Products: page.Products, Total: len(page.Products), Engine: EngineStorefront}, nil
	}
	res, err := ix.Search(ctx, query, category, size, from)
	if err != nil {
		return nil, err
	}
	products, err := Hydrate(ctx, src, res.Handles)
	if err != nil {
		return nil, err
	}
	return &Found{Products: products, Total: res.Total, Engine: EngineElasticsearch}, nil
}

// drain discards a response body so the connection can be reused.
func drain(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}
