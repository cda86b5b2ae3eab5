package shopify

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"lunelle.GO/model/entity"
)

// Wire shapes of the Storefront API payloads. Connections are flattened on the way out.

type moneyWire struct {
	Amount       decimal.Decimal `mapstructure:"amount"`
	CurrencyCode string          `mapstructure:"currencyCode"`
}

type imageWire struct {
	ID      string `mapstructure:"id"`
	URL     string `mapstructure:"url"`
	AltText string `mapstructure:"altText"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
}

type optionWire struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

type pageInfoWire struct {
	HasNextPage bool   `mapstructure:"hasNextPage"`
	EndCursor   string `mapstructure:"endCursor"`
}

type edge[T any] struct {
	Cursor string `mapstructure:"cursor"`
	Node   T      `mapstructure:"node"`
}

type connection[T any] struct {
	Edges    []edge[T]    `mapstructure:"edges"`
	PageInfo pageInfoWire `mapstructure:"pageInfo"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

type variantWire struct {
	ID                string       `mapstructure:"id"`
	Title             string       `mapstructure:"title"`
	Price             *moneyWire   `mapstructure:"price"`
	AvailableForSale  bool         `mapstructure:"availableForSale"`
	SelectedOptions   []optionWire `mapstructure:"selectedOptions"`
	Image             *imageWire   `mapstructure:"image"`
	SKU               string       `mapstructure:"sku"`
	QuantityAvailable *int         `mapstructure:"quantityAvailable"`
}

type productWire struct {
	ID               string   `mapstructure:"id"`
	Title            string   `mapstructure:"title"`
	Description      string   `mapstructure:"description"`
	DescriptionHTML  string   `mapstructure:"descriptionHtml"`
	Handle           string   `mapstructure:"handle"`
	AvailableForSale bool     `mapstructure:"availableForSale"`
	ProductType      string   `mapstructure:"productType"`
	Vendor           string   `mapstructure:"vendor"`
	Tags             []string `mapstructure:"tags"`
	PriceRange       struct {
		MinVariantPrice *moneyWire `mapstructure:"minVariantPrice"`
	} `mapstructure:"priceRange"`
	Images   connection[imageWire]   `mapstructure:"images"`
	Variants connection[variantWire] `mapstructure:"variants"`
}

type collectionWire struct {
	ID          string     `mapstructure:"id"`
	Title       string     `mapstructure:"title"`
	Handle      string     `mapstructure:"handle"`
	Description string     `mapstructure:"description"`
	Image       *imageWire `mapstructure:"image"`
}

type cartLineWire struct {
	ID          string `mapstructure:"id"`
	Quantity    int    `mapstructure:"quantity"`
	Merchandise struct {
		ID      string    `mapstructure:"id"`
		Title   string    `mapstructure:"title"`
		Price   moneyWire `mapstructure:"price"`
		Product struct {
			ID     string                `mapstructure:"id"`
			Title  string                `mapstructure:"title"`
			Handle string                `mapstructure:"handle"`
			Images connection[imageWire] `mapstructure:"images"`
		} `mapstructure:"product"`
		SelectedOptions []optionWire `mapstructure:"selectedOptions"`
	} `mapstructure:"merchandise"`
	Cost struct {
		TotalAmount moneyWire `mapstructure:"totalAmount"`
	} `mapstructure:"cost"`
}

type cartWire struct {
	ID            string `mapstructure:"id"`
	CheckoutURL   string `mapstructure:"checkoutUrl"`
	TotalQuantity int    `mapstructure:"totalQuantity"`
	Cost          struct {
		TotalAmount    moneyWire `mapstructure:"totalAmount"`
		SubtotalAmount moneyWire `mapstructure:"subtotalAmount"`
	} `mapstructure:"cost"`
	Lines connection[cartLineWire] `mapstructure:"lines"`
}

type cartPayloadWire struct {
	Cart       *cartWire   `mapstructure:"cart"`
	UserErrors []UserError `mapstructure:"userErrors"`
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook turns the API's string amounts into decimals.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	}
	return data, nil
}

// decodePayload decodes data[key] into out. It reports false when the key is absent or null.
func decodePayload(op string, data map[string]interface{}, key string, out interface{}) (bool, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return false, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(decimalHook),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return false, err
	}
	if err := dec.Decode(raw); err != nil {
		return false, &GatewayError{Op: op, Message: fmt.Sprintf("decode %s", key), Err: err}
	}
	return true, nil
}

func toMoney(m *moneyWire) entity.Money {
	if m == nil {
		return entity.NewMoney(decimal.Zero, "")
	}
	return entity.NewMoney(m.Amount, m.CurrencyCode)
}

func toImage(w *imageWire) *entity.Image {
	if w == nil || w.URL == "" {
		return nil
	}
	return &entity.Image{ID: w.ID, URL: w.URL, AltText: w.AltText, Width: w.Width, Height: w.Height}
}

func toOptions(opts []optionWire) []entity.SelectedOption {
	out := make([]entity.SelectedOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, entity.SelectedOption{Name: o.Name, Value: o.Value})
	}
	return out
}

// toProduct normalizes a product. The display price is the first variant's price,
// then the minimum variant price, then zero; the currency falls back to USD.
func toProduct(w productWire) entity.Product {
	p := entity.Product{
		ID:               w.ID,
		Title:            w.Title,
		Description:      w.Description,
		DescriptionHTML:  w.DescriptionHTML,
		Handle:           w.Handle,
		AvailableForSale: w.AvailableForSale,
		ProductType:      w.ProductType,
		Vendor:           w.Vendor,
		Tags:             w.Tags,
		Images:           []entity.Image{},
		Variants:         []entity.Variant{},
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for _, img := range w.Images.nodes() {
		img := img
		if i := toImage(&img); i != nil {
			p.Images = append(p.Images, *i)
		}
	}
	for _, v := range w.Variants.nodes() {
		p.Variants = append(p.Variants, entity.Variant{
			ID:                v.ID,
			Title:             v.Title,
			Price:             toMoney(v.Price),
			AvailableForSale:  v.AvailableForSale,
			SelectedOptions:   toOptions(v.SelectedOptions),
			Image:             toImage(v.Image),
			SKU:               v.SKU,
			QuantityAvailable: v.QuantityAvailable,
		})
	}

	var price *moneyWire
	if len(w.Variants.Edges) > 0 && w.Variants.Edges[0].Node.Price != nil {
		price = w.Variants.Edges[0].Node.Price
	} else {
		price = w.PriceRange.MinVariantPrice
	}
	p.Price = toMoney(price)
	return p
}

func toCollection(w collectionWire) entity.Collection {
	return entity.Collection{
		ID:          w.ID,
		Title:       w.Title,
		Handle:      w.Handle,
		Description: w.Description,
		Image:       toImage(w.Image),
	}
}

func toCart(w *cartWire) *entity.Cart {
	c := &entity.Cart{
		ID:            w.ID,
		CheckoutURL:   w.CheckoutURL,
		TotalQuantity: w.TotalQuantity,
		Cost: entity.CartCost{
			Subtotal: toMoney(&w.Cost.SubtotalAmount),
			Total:    toMoney(&w.Cost.TotalAmount),
		},
		Lines: []entity.CartLine{},
	}
	for _, l := range w.Lines.nodes() {
		m := l.Merchandise
		var img *entity.Image
		if imgs := m.Product.Images.nodes(); len(imgs) > 0 {
			img = toImage(&imgs[0])
		}
		c.Lines = append(c.Lines, entity.CartLine{
			ID:       l.ID,
			Quantity: l.Quantity,
			Merchandise: entity.Merchandise{
				ID:    m.ID,
				Title: m.Title,
				Price: toMoney(&m.Price),
				Product: entity.ProductSummary{
					ID:     m.Product.ID,
					Title:  m.Product.Title,
					Handle: m.Product.Handle,
					Image:  img,
				},
				SelectedOptions: toOptions(m.SelectedOptions),
			},
			Total: toMoney(&l.Cost.TotalAmount),
		})
	}
	return c
}
