// Package models adapts catalog and cart entities to the GraphQL schema types.
package models

import (
	"strings"

	gql "github.com/graph-gophers/graphql-go"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/catalog"
)

type Money struct{ m entity.Money }

func NewMoney(m entity.Money) *Money { return &Money{m: m} }

func (m *Money) Amount() string { return m.m.Amount.StringFixed(2) }
func (m *Money) CurrencyCode() string { return m.m.CurrencyCode }
func (m *Money) Formatted() string { return m.m.Format() }

type Image struct{ img entity.Image }

// NewImage returns nil for a nil image so nullable fields resolve to null.
func NewImage(img *entity.Image) *Image {
	if img == nil {
		return nil
	}
	return &Image{img: *img}
}

func (i *Image) URL() string { return i.img.URL }

func (i *Image) AltText() *string { return optional(i.img.AltText) }

func (i *Image) Width() *int32 { return optionalInt(i.img.Width) }

func (i *Image) Height() *int32 { return optionalInt(i.img.Height) }

type SelectedOption struct {
	Name  string
	Value string
}

func options(opts []entity.SelectedOption) []*SelectedOption {
	out := make([]*SelectedOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, &SelectedOption{Name: o.Name, Value: o.Value})
	}
	return out
}

type OptionGroup struct {
	Name   string
	Values []string
}

type Variant struct{ v entity.Variant }

func NewVariant(v *entity.Variant) *Variant {
	if v == nil {
		return nil
	}
	return &Variant{v: *v}
}

func (v *Variant) ID() gql.ID { return gql.ID(v.v.ID) }
func (v *Variant) Title() string { return v.v.Title }
func (v *Variant) Price() *Money { return NewMoney(v.v.Price) }
func (v *Variant) AvailableForSale() bool { return v.v.AvailableForSale }
func (v *Variant) SelectedOptions() []*SelectedOption { return options(v.v.SelectedOptions) }
func (v *Variant) SKU() *string { return optional(v.v.SKU) }

type Product struct{ p entity.Product }

func NewProduct(p entity.Product) *Product { return &Product{p: p} }

func NewProducts(ps []entity.Product) []*Product {
	out := make([]*Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProduct(p))
	}
	return out
}

func (p *Product) ID() gql.ID { return gql.ID(p.p.ID) }
func (p *Product) Handle() string { return p.p.Handle }
func (p *Product) Title() string { return p.p.Title }
func (p *Product) Description() string { return p.p.Description }
func (p *Product) DescriptionHTML() string { return p.p.DescriptionHTML }
func (p *Product) ProductType() *string { return optional(p.p.ProductType) }
func (p *Product) Vendor() *string { return optional(p.p.Vendor) }
func (p *Product) AvailableForSale() bool { return p.p.AvailableForSale }
func (p *Product) Price() *Money { return NewMoney(p.p.Price) }
func (p *Product) FeaturedImage() *Image { return NewImage(p.p.FeaturedImage()) }

func (p *Product) Tags() []string {
	if p.p.Tags == nil {
		return []string{}
	}
	return p.p.Tags
}

func (p *Product) Images() []*Image {
	out := make([]*Image, 0, len(p.p.Images))
	for i := range p.p.Images {
		out = append(out, NewImage(&p.p.Images[i]))
	}
	return out
}

func (p *Product) Variants() []*Variant {
	out := make([]*Variant, 0, len(p.p.Variants))
	for i := range p.p.Variants {
		out = append(out, NewVariant(&p.p.Variants[i]))
	}
	return out
}

func (p *Product) Options() []*OptionGroup {
	groups := catalog.OptionGroups(p.p)
	out := make([]*OptionGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, &OptionGroup{Name: g.Name, Values: g.Values})
	}
	return out
}

// Variant resolves "Name:Value" pairs to the matching variant.
func (p *Product) Variant(args struct{ Options *[]string }) *Variant {
	if args.Options == nil || len(*args.Options) == 0 {
		return NewVariant(catalog.DefaultVariant(p.p))
	}
	values := make(map[string]string, len(*args.Options))
	for _, pair := range *args.Options {
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil
		}
		values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return NewVariant(catalog.FindVariant(p.p, values))
}

type ProductConnection struct {
	page entity.ProductPage
}

func NewProductConnection(page *entity.ProductPage) *ProductConnection {
	return &ProductConnection{page: *page}
}

func (c *ProductConnection) Items() []*Product { return NewProducts(c.page.Products) }
func (c *ProductConnection) HasNextPage() bool { return c.page.HasNextPage }
func (c *ProductConnection) EndCursor() *string { return optional(c.page.EndCursor) }

type SearchResult struct {
	items  []entity.Product
	total  int
	engine string
}

func NewSearchResult(items []entity.Product, total int, engine string) *SearchResult {
	return &SearchResult{items: items, total: total, engine: engine}
}

func (r *SearchResult) Items() []*Product { return NewProducts(r.items) }
func (r *SearchResult) Total() int32 { return int32(r.total) }
func (r *SearchResult) Engine() string { return r.engine }

type Collection struct{ c entity.Collection }

func NewCollections(cs []entity.Collection) []*Collection {
	out := make([]*Collection, 0, len(cs))
	for _, c := range cs {
		out = append(out, &Collection{c: c})
	}
	return out
}

func (c *Collection) ID() gql.ID { return gql.ID(c.c.ID) }
func (c *Collection) Handle() string { return c.c.Handle }
func (c *Collection) Title() string { return c.c.Title }
func (c *Collection) Description() string { return c.c.Description }
func (c *Collection) Image() *Image { return NewImage(c.c.Image) }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int32 {
	if n == 0 {
		return nil
	}
	v := int32(n)
	return &v
}
