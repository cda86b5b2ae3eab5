package html

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/core/visitor"
	"lunelle.GO/model/entity"
	"lunelle.GO/service/catalog"
	"lunelle.GO/service/shopify"
)

const (
	featuredCount = 3
	relatedCount  = 4
)

func init() {
	api.RegisterHTMLModule(RegisterStorefrontRoutes)
}

// Page is what every template receives; Data holds the page-specific part.
type Page struct {
	AppName   string
	Title     string
	CartCount int
	Flash     string
	FlashErr  string
	Path      string
	Data      interface{}
}

// ShopParams is the /shop listing as addressed by its query string.
type ShopParams struct {
	Category string
	Sort     string
	Min      string
	Max      string
	Page     int
}

func parseShopParams(c echo.Context) ShopParams {
	p := ShopParams{
		Category: c.QueryParam("category"),
		Sort:     string(catalog.ParseSort(c.QueryParam("sort"))),
		Min:      c.QueryParam("min"),
		Max:      c.QueryParam("max"),
		Page:     1,
	}
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 1 {
		p.Page = n
	}
	if p.Page > catalog.MaxShopPages {
		p.Page = catalog.MaxShopPages
	}
	return p
}

// URL renders the params as a /shop link; overrides are key, value pairs.
func (p ShopParams) URL(overrides ...string) string {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("category", p.Category)
	if p.Sort != string(catalog.SortNewest) {
		set("sort", p.Sort)
	}
	set("min", p.Min)
	set("max", p.Max)
	if p.Page > 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		if overrides[i+1] == "" {
			q.Del(overrides[i])
			continue
		}
		q.Set(overrides[i], overrides[i+1])
	}
	if len(q) == 0 {
		return "/shop"
	}
	return "/shop?" + q.Encode()
}

func (p ShopParams) query(pageSize int) catalog.ShopQuery {
	return catalog.ShopQuery{
		Category: strings.TrimSpace(p.Category),
		Min:      catalog.ParsePrice(p.Min),
		Max:      catalog.ParsePrice(p.Max),
		Sort:     catalog.SortOption(p.Sort),
		Pages:    p.Page,
		PageSize: pageSize,
	}
}

// flashes are checked in order; the first present query key wins.
var flashes = []struct{ key, msg string }{
	{"added", "Added to cart"},
	{"updated", "Cart updated"},
	{"subscribed", "Thank you for subscribing!"},
}

// page fills the shared layout fields. The cart badge peeks at an existing
// session and never creates a cart.
func page(c echo.Context, svc *app.Services, title string, data interface{}) Page {
	p := Page{AppName: svc.Config.AppName, Title: title, Path: c.Request().URL.Path, Data: data}
	if s, ok := svc.Carts.Peek(visitor.ID(c)); ok {
		p.CartCount = s.ItemCount()
	}
	for _, f := range flashes {
		if c.QueryParam(f.key) != "" {
			p.Flash = f.msg
			break
		}
	}
	p.FlashErr = c.QueryParam("error")
	return p
}

type homeData struct {
	Featured []entity.Product
	Err      string
}

type shopData struct {
	Params      ShopParams
	Products    []entity.Product
	Categories  []string
	SortOptions []sortChoice
	HasMore     bool
	Err         string
}

type sortChoice struct {
	Value    string
	Label    string
	Selected bool
}

type productData struct {
	Product  *entity.Product
	Options  []catalog.OptionGroup
	Variant  *entity.Variant
	Selected map[string]string
	Related  []entity.Product
}

type cartData struct {
	Cart        *entity.Cart
	CheckoutURL string
	Err         string
}

func RegisterStorefrontRoutes(e *echo.Echo, svc *app.Services) {
	e.Renderer = MustRenderer()

	e.GET("/", func(c echo.Context) error {
		list := catalog.NewProductList(svc.Catalog, catalog.ProductFilter{First: featuredCount})
		data := homeData{}
		if err := list.Load(c.Request().Context()); err != nil {
			data.Err = shopify.Message(err)
		}
		data.Featured = list.State().Items
		return c.Render(http.StatusOK, "home.html", page(c, svc, "Home", data))
	})

	e.GET("/shop", func(c echo.Context) error {
		params := parseShopParams(c)
		shop := catalog.LoadShop(c.Request().Context(), svc.Catalog, params.query(svc.Config.ProductPageSize))
		data := shopData{
			Params:     params,
			Products:   shop.Products,
			Categories: shop.Categories,
			HasMore:    shop.HasNextPage && params.Page < catalog.MaxShopPages,
		}
		for _, o := range catalog.SortOptions {
			data.SortOptions = append(data.SortOptions, sortChoice{Value: string(o.Value), Label: o.Label, Selected: string(o.Value) == params.Sort})
		}
		status := http.StatusOK
		if shop.Err != nil {
			data.Err = shopify.Message(shop.Err)
			status = http.StatusBadGateway
		}
		return c.Render(status, "shop.html", page(c, svc, "Shop", data))
	})

	e.GET("/shop/:handle", func(c echo.Context) error {
		d := catalog.LoadDetail(c.Request().Context(), svc.Catalog, c.Param("handle"), relatedCount)
		switch {
		case d.Err != nil:
			return c.Render(http.StatusBadGateway, "error.html", page(c, svc, "Error", shopify.Message(d.Err)))
		case d.Product == nil:
			return c.Render(http.StatusNotFound, "error.html", page(c, svc, "Not found", "Product not found"))
		}
		data := productData{Product: d.Product, Options: catalog.OptionGroups(*d.Product), Related: d.Related}
		data.Variant = catalog.DefaultVariant(*d.Product)
		for _, g := range data.Options {
			if v := c.QueryParam("option." + g.Name); v != "" {
				data.Variant = catalog.SelectOption(*d.Product, data.Variant, g.Name, v)
			}
		}
		data.Selected = map[string]string{}
		if data.Variant != nil {
			for _, o := range data.Variant.SelectedOptions {
				data.Selected[o.Name] = o.Value
			}
		}
		return c.Render(http.StatusOK, "product.html", page(c, svc, d.Product.Title, data))
	})

	e.GET("/cart", func(c echo.Context) error {
		// A session built by this request was just fetched or created.
		_, existed := svc.Carts.Peek(visitor.ID(c))
		s := visitor.Cart(c)
		ctx := c.Request().Context()
		if existed {
			if err := s.Recover(ctx); err == nil {
				_ = s.Refresh(ctx)
			}
		}
		snap := s.Snapshot()
		data := cartData{Cart: snap.Cart, CheckoutURL: snap.CheckoutURL}
		if snap.Err != nil {
			data.Err = shopify.Message(snap.Err)
		}
		return c.Render(http.StatusOK, "cart.html", page(c, svc, "Cart", data))
	})

	e.GET("/about", func(c echo.Context) error {
		return c.Render(http.StatusOK, "about.html", page(c, svc, "About", nil))
	})

	registerForms(e, svc)
}
