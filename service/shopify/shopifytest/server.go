// Package shopifytest runs an in-memory Storefront API speaking the same GraphQL
// wire format as the real one, for tests that exercise shopify.Client end to end.
package shopifytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/shopify"
)

const Token = "test-storefront-token"

// Server is a fake Storefront API. Products and Collections may be edited between calls.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	products    []entity.Product
	collections []entity.Collection
	carts       map[string]*entity.Cart
	seq         int
	calls       map[string]int
	queries     []string
	failNext    map[string]string
	userErrNext map[string]string
	hold        map[string]chan struct{}
}

// NewServer starts a fake API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		carts:       make(map[string]*entity.Cart),
		calls:       make(map[string]int),
		failNext:    make(map[string]string),
		userErrNext: make(map[string]string),
		hold:        make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Client returns a shopify.Client pointed at the fake.
func (s *Server) Client() *shopify.Client {
	return shopify.New(shopify.Config{
		StoreDomain: "lunelle-test.myshopify.com",
		AccessToken: Token,
		Endpoint:    s.URL,
		HTTPClient:  s.Server.Client(),
	})
}

func (s *Server) AddProducts(ps ...entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, ps...)
}

func (s *Server) AddCollections(cs ...entity.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, cs...)
}

// FailNext makes the next call of op answer with a GraphQL error.
func (s *Server) FailNext(op, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[op] = message
}

// UserErrorNext makes the next mutation op answer with a userErrors entry.
func (s *Server) UserErrorNext(op, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userErrNext[op] = message
}

// Hold blocks calls of op until the returned release func is called.
func (s *Server) Hold(op string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[op] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Calls returns how many requests named op were received.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// LastQuery returns the last search query string sent with getProducts.
func (s *Server) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

// Cart returns a copy of a stored cart.
func (s *Server) Cart(id string) (*entity.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, false
	}
	cp := *c
	cp.Lines = append([]entity.CartLine(nil), c.Lines...)
	return &cp, true
}

func (s *Server) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// ExpireCart forgets a cart, as the real API does after a checkout or expiry.
func (s *Server) ExpireCart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

type request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Shopify-Storefront-Access-Token") != Token {
		http.Error(w, `{"errors":[{"message":"Unauthorized"}]}`, http.StatusUnauthorized)
		return
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	op := req.OperationName

	s.mu.Lock()
	s.calls[op]++
	hold := s.hold[op]
	delete(s.hold, op)
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.failNext[op]; ok {
		delete(s.failNext, op)
		writeJSON(w, map[string]interface{}{"errors": []map[string]string{{"message": msg}}})
		return
	}

	var data map[string]interface{}
	switch op {
	case "getProducts":
		data = s.listProducts(req.Variables)
	case "getProduct":
		data = map[string]interface{}{"product": nil}
		if p := s.findProduct(str(req.Variables["handle"])); p != nil {
			data["product"] = productJSON(*p, 10)
		}
	case "getCollections":
		data = s.listCollections(req.Variables)
	case "getCart":
		data = map[string]interface{}{"cart": nil}
		if c, ok := s.carts[str(req.Variables["cartId"])]; ok {
			data["cart"] = cartJSON(c)
		}
	case "cartCreate", "cartLinesAdd", "cartLinesUpdate":
		data = map[string]interface{}{op: s.mutate(op, req.Variables)}
	default:
		writeJSON(w, map[string]interface{}{"errors": []map[string]string{{"message": "unknown operation " + op}}})
		return
	}
	writeJSON(w, map[string]interface{}{"data": data})
}

func (s *Server) listProducts(vars map[string]interface{}) map[string]interface{} {
	query := str(vars["query"])
	s.queries = append(s.queries, query)
	var matched []entity.Product
	for _, p := range s.products {
		if matches(p, query) {
			matched = append(matched, p)
		}
	}
	first := num(vars["first"])
	start := 0
	if after := str(vars["after"]); after != "" {
		if i, err := strconv.Atoi(strings.TrimPrefix(after, "cursor:")); err == nil {
			start = i + 1
		}
	}
	end := start + first
	if end > len(matched) {
		end = len(matched)
	}
	edges := []interface{}{}
	endCursor := interface{}(nil)
	for i := start; i < end; i++ {
		cursor := fmt.Sprintf("cursor:%d", i)
		edges = append(edges, map[string]interface{}{"node": productJSON(matched[i], 5), "cursor": cursor})
		endCursor = cursor
	}
	return map[string]interface{}{"products": map[string]interface{}{
		"edges":    edges,
		"pageInfo": map[string]interface{}{"hasNextPage": end < len(matched), "endCursor": endCursor},
	}}
}

func (s *Server) listCollections(vars map[string]interface{}) map[string]interface{} {
	first := num(vars["first"])
	edges := []interface{}{}
	for i, c := range s.collections {
		if i >= first {
			break
		}
		edges = append(edges, map[string]interface{}{"node": map[string]interface{}{
			"id": c.ID, "title": c.Title, "handle": c.Handle, "description": c.Description,
			"image": imageJSON(c.Image),
		}})
	}
	return map[string]interface{}{"collections": map[string]interface{}{"edges": edges}}
}

func (s *Server) mutate(op string, vars map[string]interface{}) map[string]interface{} {
	fail := func(field []string, msg string) map[string]interface{} {
		return map[string]interface{}{
			"cart":       nil,
			"userErrors": []map[string]interface{}{{"field": field, "message": msg}},
		}
	}
	if msg, ok := s.userErrNext[op]; ok {
		delete(s.userErrNext, op)
		var cart interface{}
		if c, ok := s.carts[str(vars["cartId"])]; ok {
			cart = cartJSON(c)
		}
		return map[string]interface{}{
			"cart":       cart,
			"userErrors": []map[string]interface{}{{"field": []string{"lines"}, "message": msg}},
		}
	}

	if op == "cartCreate" {
		s.seq++
		id := fmt.Sprintf("gid://shopify/Cart/c%d", s.seq)
		c := &entity.Cart{
			ID:          id,
			CheckoutURL: fmt.Sprintf("https://lunelle-test.myshopify.com/cart/c/c%d", s.seq),
			Lines:       []entity.CartLine{},
		}
		s.carts[id] = c
		recompute(c)
		return map[string]interface{}{"cart": cartJSON(c), "userErrors": []interface{}{}}
	}

	c, ok := s.carts[str(vars["cartId"])]
	if !ok {
		return fail([]string{"cartId"}, "The specified cart does not exist.")
	}
	lines, _ := vars["lines"].([]interface{})
	for _, raw := range lines {
		line, _ := raw.(map[string]interface{})
		qty := num(line["quantity"])
		if op == "cartLinesAdd" {
			vid := str(line["merchandiseId"])
			product, variant := s.findVariant(vid)
			if variant == nil {
				return fail([]string{"lines", "0", "merchandiseId"}, "The merchandise with id "+vid+" does not exist.")
			}
			if !variant.AvailableForSale {
				return fail([]string{"lines", "0", "merchandiseId"}, "The product '"+product.Title+"' is already sold out.")
			}
			if qty < 1 {
				return fail([]string{"lines", "0", "quantity"}, "The quantity must be greater than 0.")
			}
			addLine(c, &s.seq, *product, *variant, qty)
			continue
		}
		lid := str(line["id"])
		if qty < 0 {
			return fail([]string{"lines", "0", "quantity"}, "The quantity must be greater than or equal to 0.")
		}
		l := c.Line(lid)
		if l == nil {
			return fail([]string{"lines", "0", "id"}, "The merchandise line with id "+lid+" does not exist.")
		}
		if qty == 0 {
			removeLine(c, lid)
		} else {
			l.Quantity = qty
		}
	}
	recompute(c)
	return map[string]interface{}{"cart": cartJSON(c), "userErrors": []interface{}{}}
}

func (s *Server) findProduct(handle string) *entity.Product {
	for i := range s.products {
		if s.products[i].Handle == handle {
			return &s.products[i]
		}
	}
	return nil
}

func (s *Server) findVariant(id string) (*entity.Product, *entity.Variant) {
	for i := range s.products {
		if v := s.products[i].Variant(id); v != nil {
			return &s.products[i], v
		}
	}
	return nil, nil
}

func addLine(c *entity.Cart, seq *int, p entity.Product, v entity.Variant, qty int) {
	for i := range c.Lines {
		if c.Lines[i].Merchandise.ID == v.ID {
			c.Lines[i].Quantity += qty
			return
		}
	}
	*seq++
	c.Lines = append(c.Lines, entity.CartLine{
		ID:       fmt.Sprintf("gid://shopify/CartLine/l%d", *seq),
		Quantity: qty,
		Merchandise: entity.Merchandise{
			ID:    v.ID,
			Title: v.Title,
			Price: v.Price,
			Product: entity.ProductSummary{
				ID: p.ID, Title: p.Title, Handle: p.Handle, Image: p.FeaturedImage(),
			},
			SelectedOptions: v.SelectedOptions,
		},
	})
}

func removeLine(c *entity.Cart, id string) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

func recompute(c *entity.Cart) {
	total := decimal.Zero
	qty := 0
	code := entity.DefaultCurrency
	for i := range c.Lines {
		l := &c.Lines[i]
		l.Total = entity.NewMoney(l.Merchandise.Price.Amount.Mul(decimal.NewFromInt(int64(l.Quantity))), l.Merchandise.Price.CurrencyCode)
		total = total.Add(l.Total.Amount)
		qty += l.Quantity
		code = l.Merchandise.Price.CurrencyCode
	}
	c.TotalQuantity = qty
	c.Cost = entity.CartCost{Subtotal: entity.NewMoney(total, code), Total: entity.NewMoney(total, code)}
}

// matches applies the subset of the Storefront search syntax the storefront emits:
// product_type:X, variants.price:>=N and variants.price:<=N joined by " AND ".
// Any other term is a case-insensitive title match.
func matches(p entity.Product, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	for _, term := range strings.Split(query, " AND ") {
		term = strings.TrimSpace(term)
		switch {
		case strings.HasPrefix(term, "product_type:"):
			if !strings.EqualFold(p.ProductType, strings.Trim(strings.TrimPrefix(term, "product_type:"), `"`)) {
				return false
			}
		case strings.HasPrefix(term, "variants.price:>="):
			bound := decimal.RequireFromString(strings.TrimPrefix(term, "variants.price:>="))
			if !anyVariant(p, func(v entity.Variant) bool { return v.Price.Amount.GreaterThanOrEqual(bound) }) {
				return false
			}
		case strings.HasPrefix(term, "variants.price:<="):
			bound := decimal.RequireFromString(strings.TrimPrefix(term, "variants.price:<="))
			if !anyVariant(p, func(v entity.Variant) bool { return v.Price.Amount.LessThanOrEqual(bound) }) {
				return false
			}
		default:
			if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(term)) {
				return false
			}
		}
	}
	return true
}

func anyVariant(p entity.Product, fn func(entity.Variant) bool) bool {
	for _, v := range p.Variants {
		if fn(v) {
			return true
		}
	}
	return false
}

func moneyJSON(m entity.Money) map[string]interface{} {
	return map[string]interface{}{"amount": m.Amount.String(), "currencyCode": m.CurrencyCode}
}

func imageJSON(img *entity.Image) interface{} {
	if img == nil {
		return nil
	}
	var alt interface{}
	if img.AltText != "" {
		alt = img.AltText
	}
	return map[string]interface{}{"id": img.ID, "url": img.URL, "altText": alt, "width": img.Width, "height": img.Height}
}

func optionsJSON(opts []entity.SelectedOption) []interface{} {
	out := []interface{}{}
	for _, o := range opts {
		out = append(out, map[string]interface{}{"name": o.Name, "value": o.Value})
	}
	return out
}

func productJSON(p entity.Product, images int) map[string]interface{} {
	imgEdges := []interface{}{}
	for i := range p.Images {
		if i >= images {
			break
		}
		imgEdges = append(imgEdges, map[string]interface{}{"node": imageJSON(&p.Images[i])})
	}
	varEdges := []interface{}{}
	min := p.Price
	for i, v := range p.Variants {
		if i == 0 || v.Price.Amount.LessThan(min.Amount) {
			min = v.Price
		}
		var qty interface{}
		if v.QuantityAvailable != nil {
			qty = *v.QuantityAvailable
		}
		varEdges = append(varEdges, map[string]interface{}{"node": map[string]interface{}{
			"id":                v.ID,
			"title":             v.Title,
			"price":             moneyJSON(v.Price),
			"availableForSale":  v.AvailableForSale,
			"selectedOptions":   optionsJSON(v.SelectedOptions),
			"image":             imageJSON(v.Image),
			"sku":               v.SKU,
			"quantityAvailable": qty,
		}})
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"id":               p.ID,
		"title":            p.Title,
		"description":      p.Description,
		"descriptionHtml":  p.DescriptionHTML,
		"handle":           p.Handle,
		"availableForSale": p.AvailableForSale,
		"productType":      p.ProductType,
		"vendor":           p.Vendor,
		"tags":             tags,
		"priceRange":       map[string]interface{}{"minVariantPrice": moneyJSON(min)},
		"images":           map[string]interface{}{"edges": imgEdges},
		"variants":         map[string]interface{}{"edges": varEdges},
	}
}

func cartJSON(c *entity.Cart) map[string]interface{} {
	edges := []interface{}{}
	for _, l := range c.Lines {
		imgEdges := []interface{}{}
		if l.Merchandise.Product.Image != nil {
			imgEdges = append(imgEdges, map[string]interface{}{"node": imageJSON(l.Merchandise.Product.Image)})
		}
		edges = append(edges, map[string]interface{}{"node": map[string]interface{}{
			"id":       l.ID,
			"quantity": l.Quantity,
			"merchandise": map[string]interface{}{
				"id":    l.Merchandise.ID,
				"title": l.Merchandise.Title,
				"price": moneyJSON(l.Merchandise.Price),
				"product": map[string]interface{}{
					"id":     l.Merchandise.Product.ID,
					"title":  l.Merchandise.Product.Title,
					"handle": l.Merchandise.Product.Handle,
					"images": map[string]interface{}{"edges": imgEdges},
				},
				"selectedOptions": optionsJSON(l.Merchandise.SelectedOptions),
			},
			"cost": map[string]interface{}{"totalAmount": moneyJSON(l.Total)},
		}})
	}
	return map[string]interface{}{
		"id":            c.ID,
		"checkoutUrl":   c.CheckoutURL,
		"totalQuantity": c.TotalQuantity,
		"cost": map[string]interface{}{
			"totalAmount":    moneyJSON(c.Cost.Total),
			"subtotalAmount": moneyJSON(c.Cost.Subtotal),
		},
		"lines": map[string]interface{}{"edges": edges},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
