package cart

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/core/visitor"
	"lunelle.GO/model/entity"
	"lunelle.GO/service/cart"
	"lunelle.GO/service/shopify"
)

func init() {
	api.RegisterModule(RegisterCartRoutes)
}

// cartResponse is the JSON view of a cart session.
type cartResponse struct {
	State       string       `json:"state"`
	CartID      string       `json:"cartId,omitempty"`
	Cart        *entity.Cart `json:"cart"`
	ItemCount   int          `json:"itemCount"`
	CheckoutURL string       `json:"checkoutUrl,omitempty"`
	Error       string       `json:"error,omitempty"`
	DurationMs  int64        `json:"request_duration_ms"`
}

func respond(c echo.Context, status int, s *cart.Session) error {
	snap := s.Snapshot()
	return c.JSON(status, cartResponse{
		State:       snap.State.String(),
		CartID:      snap.CartID,
		Cart:        snap.Cart,
		ItemCount:   snap.ItemCount,
		CheckoutURL: snap.CheckoutURL,
		Error:       shopify.Message(snap.Err),
		DurationMs:  api.Elapsed(c),
	})
}

func RegisterCartRoutes(apiGroup *echo.Group, svc *app.Services) {
	g := apiGroup.Group("/cart")

	// GET /api/cart – the visitor's cart; retries creation after an earlier failure
	g.GET("", func(c echo.Context) error {
		s := visitor.Cart(c)
		if s == nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "visitor middleware not installed"})
		}
		if err := s.Recover(c.Request().Context()); err != nil {
			return c.JSON(statusFor(err), echo.Map{"error": shopify.Message(err)})
		}
		return respond(c, http.StatusOK, s)
	})

	// POST /api/cart/lines {"variantId": "...", "quantity": 1}
	g.POST("/lines", func(c echo.Context) error {
		var body struct {
			VariantID string `json:"variantId"`
			Quantity  *int   `json:"quantity"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		qty := 1
		if body.Quantity != nil {
			qty = *body.Quantity
		}
		s := visitor.Cart(c)
		if err := s.AddItem(c.Request().Context(), body.VariantID, qty); err != nil {
			return c.JSON(statusFor(err), echo.Map{"error": shopify.Message(err)})
		}
		return respond(c, http.StatusOK, s)
	})

	// PATCH /api/cart/lines/:id {"quantity": 2} – quantity 0 removes the line
	g.PATCH("/lines/:id", func(c echo.Context) error {
		var body struct {
			Quantity *int `json:"quantity"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Quantity == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity is required"})
		}
		return updateLine(c, lineID(c), *body.Quantity)
	})

	// DELETE /api/cart/lines/:id
	g.DELETE("/lines/:id", func(c echo.Context) error {
		return updateLine(c, lineID(c), 0)
	})
}

func updateLine(c echo.Context, id string, quantity int) error {
	s := visitor.Cart(c)
	if err := s.UpdateItem(c.Request().Context(), id, quantity); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": shopify.Message(err)})
	}
	return respond(c, http.StatusOK, s)
}

// lineID accepts both escaped and raw line gids.
func lineID(c echo.Context) string {
	id, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return c.Param("id")
	}
	return id
}

func statusFor(err error) int {
	var ge *shopify.GatewayError
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrCartNotInitialized):
		return http.StatusConflict
	case errors.Is(err, shopify.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &ge) && len(ge.UserErrors) > 0:
		return http.StatusUnprocessableEntity
	case errors.As(err, &ge):
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}
