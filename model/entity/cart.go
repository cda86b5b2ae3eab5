package entity

// Cart is the remote cart record. It is replaced wholesale after every fetch or mutation.
type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
}

type CartCost struct {
	Subtotal Money `json:"subtotalAmount"`
	Total    Money `json:"totalAmount"`
}

// ProductSummary is the product snapshot attached to a cart line.
type ProductSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Image  *Image `json:"image,omitempty"`
}

// Merchandise is the variant snapshot attached to a cart line.
type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Price           Money            `json:"price"`
	Product         ProductSummary   `json:"product"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
}

type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
	Total       Money       `json:"totalAmount"`
}

// IsEmpty reports whether the cart has no lines. A nil cart is empty.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Line looks a line up by id.
func (c *Cart) Line(id string) *CartLine {
	if c == nil {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return &c.Lines[i]
		}
	}
	return nil
}
