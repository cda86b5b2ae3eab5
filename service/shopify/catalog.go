package shopify

import (
	"context"

	"lunelle.GO/model/entity"
)

const (
	DefaultProductPageSize    = 20
	DefaultCollectionPageSize = 10
)

// ProductQuery selects one page of products. Query is passed through to the
// Storefront search syntax untouched.
type ProductQuery struct {
	First int
	After string
	Query string
}

// ListProducts fetches one page of products. A payload without products is an empty page.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*entity.ProductPage, error) {
	first := q.First
	if first <= 0 {
		first = DefaultProductPageSize
	}
	vars := map[string]interface{}{"first": first, "after": nil, "query": nil}
	if q.After != "" {
		vars["after"] = q.After
	}
	if q.Query != "" {
		vars["query"] = q.Query
	}

	data, err := c.do(ctx, "getProducts", productsQuery, vars)
	if err != nil {
		return nil, err
	}
	var conn connection[productWire]
	ok, err := decodePayload("getProducts", data, "products", &conn)
	if err != nil {
		return nil, err
	}
	page := &entity.ProductPage{Products: []entity.Product{}}
	if !ok {
		return page, nil
	}
	for _, n := range conn.nodes() {
		page.Products = append(page.Products, toProduct(n))
	}
	page.HasNextPage = conn.PageInfo.HasNextPage
	page.EndCursor = conn.PageInfo.EndCursor
	return page, nil
}

// GetProduct fetches a product by handle. A missing product is (nil, nil).
func (c *Client) GetProduct(ctx context.Context, handle string) (*entity.Product, error) {
	data, err := c.do(ctx, "getProduct", productQuery, map[string]interface{}{"handle": handle})
	if err != nil {
		return nil, err
	}
	var w productWire
	ok, err := decodePayload("getProduct", data, "product", &w)
	if err != nil || !ok {
		return nil, err
	}
	p := toProduct(w)
	return &p, nil
}

// ListCollections fetches the first collections.
func (c *Client) ListCollections(ctx context.Context, first int) ([]entity.Collection, error) {
	if first <= 0 {
		first = DefaultCollectionPageSize
	}
	data, err := c.do(ctx, "getCollections", collectionsQuery, map[string]interface{}{"first": first})
	if err != nil {
		return nil, err
	}
	var conn connection[collectionWire]
	if _, err := decodePayload("getCollections", data, "collections", &conn); err != nil {
		return nil, err
	}
	out := make([]entity.Collection, 0, len(conn.Edges))
	for _, n := range conn.nodes() {
		out = append(out, toCollection(n))
	}
	return out, nil
}
