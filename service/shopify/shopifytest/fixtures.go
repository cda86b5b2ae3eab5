package shopifytest

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lunelle.GO/model/entity"
)

// Product builds a single-variant product with one image.
func Product(handle, productType, price string, available bool) entity.Product {
	title := cases.Title(language.English).String(strings.ReplaceAll(handle, "-", " "))
	amount := decimal.RequireFromString(price)
	return entity.Product{
		ID:               "gid://shopify/Product/" + handle,
		Title:            title,
		Description:      title + " description",
		DescriptionHTML:  "<p>" + title + " description</p>",
		Handle:           handle,
		ProductType:      productType,
		Vendor:           "Lunelle",
		Tags:             []string{productType},
		AvailableForSale: available,
		Price:            entity.NewMoney(amount, "USD"),
		Images: []entity.Image{{
			ID:      "gid://shopify/ProductImage/" + handle,
			URL:     "https://cdn.shopify.com/s/files/" + handle + ".jpg",
			AltText: title,
			Width:   800,
			Height:  800,
		}},
		Variants: []entity.Variant{{
			ID:               "gid://shopify/ProductVariant/" + handle,
			Title:            "Default Title",
			Price:            entity.NewMoney(amount, "USD"),
			AvailableForSale: available,
			SelectedOptions:  []entity.SelectedOption{{Name: "Title", Value: "Default Title"}},
			SKU:              strings.ToUpper(handle),
		}},
	}
}

// SizedProduct builds a product with one variant per size and color combination.
// Variants listed in soldOut ("M/Rose") are unavailable.
func SizedProduct(handle, productType, price string, sizes, colors []string, soldOut ...string) entity.Product {
	p := Product(handle, productType, price, true)
	amount := decimal.RequireFromString(price)
	p.Variants = nil
	for _, size := range sizes {
		for _, color := range colors {
			title := size + " / " + color
			available := true
			for _, so := range soldOut {
				if so == size+"/"+color {
					available = false
				}
			}
			p.Variants = append(p.Variants, entity.Variant{
				ID:               fmt.Sprintf("gid://shopify/ProductVariant/%s-%s-%s", handle, strings.ToLower(size), strings.ToLower(color)),
				Title:            title,
				Price:            entity.NewMoney(amount, "USD"),
				AvailableForSale: available,
				SelectedOptions: []entity.SelectedOption{
					{Name: "Size", Value: size},
					{Name: "Color", Value: color},
				},
			})
		}
	}
	return p
}

// RandomProducts builds n available products with fake titles and prices.
func RandomProducts(n int, productType string) []entity.Product {
	out := make([]entity.Product, 0, n)
	for i := 0; i < n; i++ {
		handle := fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(gofakeit.ProductName(), " ", "-")), i)
		price := fmt.Sprintf("%.2f", gofakeit.Price(5, 200))
		out = append(out, Product(handle, productType, price, true))
	}
	return out
}

func Collection(handle, title string) entity.Collection {
	return entity.Collection{
		ID:          "gid://shopify/Collection/" + handle,
		Title:       title,
		Handle:      handle,
		Description: title + " collection",
	}
}
