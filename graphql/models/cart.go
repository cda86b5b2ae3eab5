package models

import (
	gql "github.com/graph-gophers/graphql-go"

	"lunelle.GO/model/entity"
)

type Cart struct{ c *entity.Cart }

// NewCart returns nil for a nil cart.
func NewCart(c *entity.Cart) *Cart {
	if c == nil {
		return nil
	}
	return &Cart{c: c}
}

func (c *Cart) ID() gql.ID { return gql.ID(c.c.ID) }
func (c *Cart) CheckoutURL() string { return c.c.CheckoutURL }
func (c *Cart) TotalQuantity() int32 { return int32(c.c.TotalQuantity) }
func (c *Cart) Subtotal() *Money { return NewMoney(c.c.Cost.Subtotal) }
func (c *Cart) Total() *Money { return NewMoney(c.c.Cost.Total) }

func (c *Cart) Lines() []*CartLine {
	out := make([]*CartLine, 0, len(c.c.Lines))
	for _, l := range c.c.Lines {
		out = append(out, &CartLine{l: l})
	}
	return out
}

type CartLine struct{ l entity.CartLine }

func (l *CartLine) ID() gql.ID { return gql.ID(l.l.ID) }
func (l *CartLine) Quantity() int32 { return int32(l.l.Quantity) }
func (l *CartLine) VariantID() gql.ID { return gql.ID(l.l.Merchandise.ID) }
func (l *CartLine) VariantTitle() string { return l.l.Merchandise.Title }
func (l *CartLine) ProductTitle() string { return l.l.Merchandise.Product.Title }
func (l *CartLine) ProductHandle() string { return l.l.Merchandise.Product.Handle }
func (l *CartLine) Image() *Image { return NewImage(l.l.Merchandise.Product.Image) }
func (l *CartLine) SelectedOptions() []*SelectedOption { return options(l.l.Merchandise.SelectedOptions) }
func (l *CartLine) Price() *Money { return NewMoney(l.l.Merchandise.Price) }
func (l *CartLine) Total() *Money { return NewMoney(l.l.Total) }

type NewsletterResult struct {
	OK      bool
	Message string
}
