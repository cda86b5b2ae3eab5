package html

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"lunelle.GO/app"
	"lunelle.GO/core/visitor"
	"lunelle.GO/service/newsletter"
	"lunelle.GO/service/shopify"
)

// registerForms handles the plain form posts. Each redirects (303) back with a
// flash parameter so a reload never repeats the action.
func registerForms(e *echo.Echo, svc *app.Services) {
	e.POST("/cart/add", func(c echo.Context) error {
		qty := formInt(c, "quantity", 1)
		err := visitor.Cart(c).AddItem(c.Request().Context(), c.FormValue("variant_id"), qty)
		return back(c, c.FormValue("return"), "/cart", "added", err, shopify.Message)
	})

	e.POST("/cart/update", func(c echo.Context) error {
		qty := formInt(c, "quantity", -1)
		err := visitor.Cart(c).UpdateItem(c.Request().Context(), c.FormValue("line_id"), qty)
		return back(c, "/cart", "/cart", "updated", err, shopify.Message)
	})

	e.POST("/newsletter", func(c echo.Context) error {
		source := c.FormValue("source")
		if source == "" {
			source = newsletter.SourceFooter
		}
		_, err := svc.Newsletter.Subscribe(c.Request().Context(), c.FormValue("email"), source)
		if err != nil && !errors.Is(err, newsletter.ErrInvalidEmail) {
			c.Logger().Error(err)
		}
		return back(c, c.FormValue("return"), "/", "subscribed", err, newsletter.Message)
	})
}

func formInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.FormValue(name)))
	if err != nil {
		return def
	}
	return n
}

// back redirects to target (a local path) with ?<okFlag>=1 or ?error=<message>.
func back(c echo.Context, target, fallback, okFlag string, err error, message func(error) string) error {
	u, perr := url.Parse(target)
	if perr != nil || !localPath(target) {
		u, _ = url.Parse(fallback)
	}
	q := u.Query()
	for _, f := range flashes {
		q.Del(f.key)
	}
	q.Del("error")
	if err != nil {
		q.Set("error", message(err))
	} else {
		q.Set(okFlag, "1")
	}
	u.RawQuery = q.Encode()
	return c.Redirect(http.StatusSeeOther, u.String())
}

// localPath rejects absolute and protocol-relative URLs so return= cannot redirect off-site.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
