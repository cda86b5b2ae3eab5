package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/model/entity"
	"lunelle.GO/service/catalog"
	"lunelle.GO/service/shopify"
)

const relatedCount = 4

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

func RegisterCatalogRoutes(apiGroup *echo.Group, svc *app.Services) {
	g := apiGroup.Group("/products")

	// GET /api/products?category=Rings&min=10&max=50&sort=price-low&first=20&after=<cursor>
	g.GET("", func(c echo.Context) error {
		filter := catalog.ProductFilter{
			Category: c.QueryParam("category"),
			PriceMin: catalog.ParsePrice(c.QueryParam("min")),
			PriceMax: catalog.ParsePrice(c.QueryParam("max")),
			First:    queryInt(c, "first", svc.Config.ProductPageSize),
		}
		if q, ok := c.QueryParams()["q"]; ok && len(q) > 0 {
			filter.Query = catalog.Query(q[0])
		}
		page, err := catalog.ListPage(c.Request().Context(), svc.Catalog, filter, c.QueryParam("after"), catalog.ParseSort(c.QueryParam("sort")))
		if err != nil {
			return gatewayError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"products":            page.Products,
			"hasNextPage":         page.HasNextPage,
			"endCursor":           page.EndCursor,
			"request_duration_ms": api.Elapsed(c),
		})
	})

	// GET /api/products/:handle
	g.GET("/:handle", func(c echo.Context) error {
		d := catalog.LoadDetail(c.Request().Context(), svc.Catalog, c.Param("handle"), relatedCount)
		switch {
		case d.Err != nil:
			return gatewayError(c, d.Err)
		case d.NotFound || d.Product == nil:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"product":             d.Product,
			"options":             catalog.OptionGroups(*d.Product),
			"defaultVariant":      catalog.DefaultVariant(*d.Product),
			"related":             d.Related,
			"request_duration_ms": api.Elapsed(c),
		})
	})

	// GET /api/collections?first=10
	apiGroup.GET("/collections", func(c echo.Context) error {
		cols, err := svc.Catalog.ListCollections(c.Request().Context(), queryInt(c, "first", shopify.DefaultCollectionPageSize))
		if err != nil {
			return gatewayError(c, err)
		}
		if cols == nil {
			cols = []entity.Collection{}
		}
		return c.JSON(http.StatusOK, echo.Map{"collections": cols, "request_duration_ms": api.Elapsed(c)})
	})

	// GET /api/search?q=moon&category=Rings&size=20&from=0
	// Uses the search index when configured, the storefront's own search otherwise.
	apiGroup.GET("/search", func(c echo.Context) error {
		q := strings.TrimSpace(c.QueryParam("q"))
		if q == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
		}
		found, err := svc.Search.Find(c.Request().Context(), svc.Catalog, q, c.QueryParam("category"),
			queryInt(c, "size", svc.Config.ProductPageSize), queryInt(c, "from", 0))
		if err != nil {
			return gatewayError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"products": found.Products, "total": found.Total, "engine": found.Engine})
	})
}

func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// gatewayError maps a storefront failure to 503 when unconfigured, 502 otherwise.
func gatewayError(c echo.Context, err error) error {
	status := http.StatusBadGateway
	if errors.Is(err, shopify.ErrNotConfigured) {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{"error": shopify.Message(err)})
}
