package shopify

import (
	"context"
	"log"

	"lunelle.GO/model/entity"
)

// CreateCart creates an empty remote cart.
func (c *Client) CreateCart(ctx context.Context) (*entity.Cart, error) {
	vars := map[string]interface{}{"input": map[string]interface{}{}}
	return c.mutateCart(ctx, "cartCreate", cartCreateMutation, vars)
}

// AddToCart adds quantity of a variant to the cart. A zero quantity means one.
func (c *Client) AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*entity.Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	vars := map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"merchandiseId": variantID, "quantity": quantity},
		},
	}
	return c.mutateCart(ctx, "cartLinesAdd", cartLinesAddMutation, vars)
}

// UpdateCartLine sets a line's quantity. Quantity 0 removes the line.
func (c *Client) UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (*entity.Cart, error) {
	vars := map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"id": lineID, "quantity": quantity},
		},
	}
	return c.mutateCart(ctx, "cartLinesUpdate", cartLinesUpdateMutation, vars)
}

// GetCart fetches a cart by id. It never fails: a missing cart or any error is (nil, false).
func (c *Client) GetCart(ctx context.Context, cartID string) (*entity.Cart, bool) {
	data, err := c.do(ctx, "getCart", cartQuery, map[string]interface{}{"cartId": cartID})
	if err != nil {
		log.Printf("shopify: getCart %s: %v", cartID, err)
		return nil, false
	}
	var w cartWire
	ok, err := decodePayload("getCart", data, "cart", &w)
	if err != nil {
		log.Printf("shopify: getCart %s: %v", cartID, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return toCart(&w), true
}

// mutateCart runs a cart mutation. Non-empty userErrors fail the call even when a cart is returned.
func (c *Client) mutateCart(ctx context.Context, op, mutation string, vars map[string]interface{}) (*entity.Cart, error) {
	data, err := c.do(ctx, op, mutation, vars)
	if err != nil {
		return nil, err
	}
	var payload cartPayloadWire
	ok, err := decodePayload(op, data, op, &payload)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &GatewayError{Op: op, Message: "response contained no " + op + " payload"}
	}
	if len(payload.UserErrors) > 0 {
		return nil, userErrorsError(op, payload.UserErrors)
	}
	if payload.Cart == nil {
		return nil, &GatewayError{Op: op, Message: "no cart returned"}
	}
	return toCart(payload.Cart), nil
}
