package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/service/search"
)

func init() {
	api.RegisterModule(RegisterAdminRoutes)
}

// RegisterAdminRoutes mounts maintenance endpoints. They are not in the auth
// skipper list, so the /api auth middleware guards them.
func RegisterAdminRoutes(apiGroup *echo.Group, svc *app.Services) {
	g := apiGroup.Group("/admin")

	// POST /api/admin/cache/flush – drop cached catalog responses and resized images
	g.POST("/cache/flush", func(c echo.Context) error {
		catalog, err := svc.Catalog.Flush(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"catalog":             catalog,
			"media":               svc.Media.Flush(),
			"request_duration_ms": api.Elapsed(c),
		})
	})

	// POST /api/admin/search/reindex – rebuild the search index from the live catalog
	g.POST("/search/reindex", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := svc.Search.EnsureIndex(ctx); err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, search.ErrNotConfigured) {
				status = http.StatusServiceUnavailable
			}
			return c.JSON(status, echo.Map{"error": err.Error()})
		}
		n, err := svc.Search.Reindex(ctx, svc.Shopify)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error(), "indexed": n})
		}
		return c.JSON(http.StatusOK, echo.Map{"indexed": n, "index": svc.Search.Name(), "request_duration_ms": api.Elapsed(c)})
	})

	// GET /api/admin/carts – live cart sessions held by this process
	g.GET("/carts", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"sessions": svc.Carts.Len()})
	})
}
