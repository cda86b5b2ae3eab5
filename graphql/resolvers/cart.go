package resolvers

import (
	"context"

	"lunelle.GO/core/visitor"
	"lunelle.GO/graphql"
	gqlmodels "lunelle.GO/graphql/models"
	"lunelle.GO/service/cart"
)

func (r *Resolver) session(ctx context.Context) (*cart.Session, error) {
	s, ok := visitor.CartFromContext(ctx)
	if !ok || s == nil {
		return nil, &resolverError{msg: "no visitor session on this request", code: "NO_SESSION"}
	}
	return s, nil
}

// Cart returns the visitor's cart, retrying creation once after an earlier failure.
func (r *Resolver) Cart(ctx context.Context) (*gqlmodels.Cart, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Recover(ctx); err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewCart(s.Cart()), nil
}

func (r *Resolver) AddToCart(ctx context.Context, args graphql.AddToCartArgs) (*gqlmodels.Cart, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	qty := 1
	if args.Quantity != nil {
		qty = int(*args.Quantity)
	}
	if err := s.AddItem(ctx, string(args.VariantID), qty); err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewCart(s.Cart()), nil
}

func (r *Resolver) UpdateCartLine(ctx context.Context, args graphql.UpdateCartLineArgs) (*gqlmodels.Cart, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.UpdateItem(ctx, string(args.LineID), int(args.Quantity)); err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewCart(s.Cart()), nil
}

func (r *Resolver) RemoveCartLine(ctx context.Context, args graphql.RemoveCartLineArgs) (*gqlmodels.Cart, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.RemoveItem(ctx, string(args.LineID)); err != nil {
		return nil, toResolverError(err)
	}
	return gqlmodels.NewCart(s.Cart()), nil
}
