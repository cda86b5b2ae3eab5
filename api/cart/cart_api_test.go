package cart_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunelle.GO/api"
	_ "lunelle.GO/api/cart"
	"lunelle.GO/app/apptest"
	"lunelle.GO/service/shopify/shopifytest"
)

const moonRing = "gid://shopify/ProductVariant/moon-ring"

type cartBody struct {
	State     string `json:"state"`
	CartID    string `json:"cartId"`
	ItemCount int    `json:"itemCount"`
	Error     string `json:"error"`
	Cart      *struct {
		Lines []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"lines"`
	} `json:"cart"`
}

// shopper replays the visitor cookie like a browser.
type shopper struct {
	t       *testing.T
	e       *echo.Echo
	cookies []*http.Cookie
}

func (s *shopper) do(method, target, body string) (int, cartBody) {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		s.cookies = set
	}
	var out cartBody
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func newShopper(t *testing.T) (*shopper, *shopifytest.Server) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(
		shopifytest.Product("moon-ring", "Rings", "50.00", true),
		shopifytest.Product("sun-ring", "Rings", "35.00", false),
	)
	return &shopper{t: t, e: api.NewServer(apptest.New(t, fake))}, fake
}

func TestCart_AddUpdateRemove(t *testing.T) {
	s, fake := newShopper(t)

	code, body := s.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body.State)
	require.NotEmpty(t, body.CartID)

	code, body = s.do(http.MethodPost, "/api/cart/lines", `{"variantId":"`+moonRing+`","quantity":2}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, body.ItemCount)
	require.Len(t, body.Cart.Lines, 1)
	line := body.Cart.Lines[0].ID

	code, body = s.do(http.MethodPatch, "/api/cart/lines/"+url.PathEscape(line), `{"quantity":5}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, body.ItemCount)

	code, body = s.do(http.MethodDelete, "/api/cart/lines/"+url.PathEscape(line), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, body.ItemCount)
	assert.Equal(t, 1, fake.CartCount(), "one cart for the whole visit")
}

func TestCart_SoldOutIsUnprocessable(t *testing.T) {
	s, _ := newShopper(t)

	code, body := s.do(http.MethodPost, "/api/cart/lines", `{"variantId":"gid://shopify/ProductVariant/sun-ring"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body.Error, "sold out")
}

func TestCart_InvalidQuantity(t *testing.T) {
	s, fake := newShopper(t)

	code, _ := s.do(http.MethodPost, "/api/cart/lines", `{"variantId":"`+moonRing+`","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 0, fake.Calls("cartLinesAdd"))

	code, _ = s.do(http.MethodPatch, "/api/cart/lines/x", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCart_VisitorsDoNotShareCarts(t *testing.T) {
	fake := shopifytest.NewServer(t)
	fake.AddProducts(shopifytest.Product("moon-ring", "Rings", "50.00", true))
	e := api.NewServer(apptest.New(t, fake))
	alice := &shopper{t: t, e: e}
	bob := &shopper{t: t, e: e}

	_, a := alice.do(http.MethodPost, "/api/cart/lines", `{"variantId":"`+moonRing+`"}`)
	_, b := bob.do(http.MethodGet, "/api/cart", "")
	assert.NotEqual(t, a.CartID, b.CartID)
	assert.Equal(t, 1, a.ItemCount)
	assert.Equal(t, 0, b.ItemCount)
}
