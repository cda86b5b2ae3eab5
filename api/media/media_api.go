package media

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/service/media"
)

func init() {
	api.RegisterRoute(RegisterMediaRoutes)
}

// RegisterMediaRoutes serves resized product images for responsive <img srcset>.
//
//	GET /media/resize?src=https://cdn.shopify.com/...jpg&w=400&fmt=webp
func RegisterMediaRoutes(e *echo.Echo, svc *app.Services) {
	e.GET("/media/resize", func(c echo.Context) error {
		width, _ := strconv.Atoi(c.QueryParam("w"))
		format := c.QueryParam("fmt")
		if format == "" {
			format = c.QueryParam("format")
		}
		img, err := svc.Media.Resize(c.Request().Context(), c.QueryParam("src"), width, format)
		switch {
		case errors.Is(err, media.ErrHostNotAllowed):
			return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
		case errors.Is(err, media.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case err != nil:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		c.Response().Header().Set("Cache-Control", "public, max-age=86400, immutable")
		c.Response().Header().Set("X-Image-Size", strconv.Itoa(img.Width)+"x"+strconv.Itoa(img.Height))
		return c.Blob(http.StatusOK, img.ContentType, img.Body)
	})
}
