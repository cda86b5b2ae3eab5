package availability

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/model/entity"
	"lunelle.GO/service/shopify"
)

// maxHandles bounds one availability request.
const maxHandles = 25

func init() {
	api.RegisterModule(RegisterAvailabilityRoutes)
}

// VariantStock is the live state of one variant.
type VariantStock struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Price             entity.Money `json:"price"`
	AvailableForSale  bool         `json:"availableForSale"`
	QuantityAvailable *int         `json:"quantityAvailable,omitempty"`
}

// ProductStock is the live state of one product.
type ProductStock struct {
	Handle           string         `json:"handle"`
	AvailableForSale bool           `json:"availableForSale"`
	Price            entity.Money   `json:"price"`
	Variants         []VariantStock `json:"variants"`
}

func stockOf(p *entity.Product) ProductStock {
	out := ProductStock{Handle: p.Handle, AvailableForSale: p.AvailableForSale, Price: p.Price}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, VariantStock{
			ID:                v.ID,
			Title:             v.Title,
			Price:             v.Price,
			AvailableForSale:  v.AvailableForSale,
			QuantityAvailable: v.QuantityAvailable,
		})
	}
	return out
}

// RegisterAvailabilityRoutes serves uncached price and stock, for a last
// check before checkout when the catalog cache may be stale.
func RegisterAvailabilityRoutes(apiGroup *echo.Group, svc *app.Services) {
	// GET /api/availability?handles=moon-ring,silk-dress
	apiGroup.GET("/availability", func(c echo.Context) error {
		handles := splitHandles(c.QueryParam("handles"))
		if len(handles) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "handles required"})
		}
		if len(handles) > maxHandles {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many handles"})
		}

		products := make([]ProductStock, len(handles))
		found := make([]bool, len(handles))
		eg, ctx := errgroup.WithContext(c.Request().Context())
		eg.SetLimit(8)
		for i, h := range handles {
			i, h := i, h
			eg.Go(func() error {
				p, err := svc.Shopify.GetProduct(ctx, h)
				if err != nil || p == nil {
					return err
				}
				products[i], found[i] = stockOf(p), true
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, shopify.ErrNotConfigured) {
				status = http.StatusServiceUnavailable
			}
			return c.JSON(status, echo.Map{"error": shopify.Message(err), "request_duration_ms": api.Elapsed(c)})
		}

		out := make([]ProductStock, 0, len(handles))
		missing := []string{}
		for i, h := range handles {
			if found[i] {
				out = append(out, products[i])
			} else {
				missing = append(missing, h)
			}
		}
		return c.JSON(http.StatusOK, echo.Map{
			"products":            out,
			"notFound":            missing,
			"request_duration_ms": api.Elapsed(c),
		})
	})
}

// splitHandles dedupes a comma separated list, keeping first-seen order.
func splitHandles(raw string) []string {
	seen := map[string]bool{}
	var out []string
	for _, h := range strings.Split(raw, ",") {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
