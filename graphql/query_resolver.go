package graphql

import (
	"context"

	gqlmodels "lunelle.GO/graphql/models"
)

// QueryResolver is the Query root (used by resolvers package).
type QueryResolver interface {
	Products(ctx context.Context, args ProductsArgs) (*gqlmodels.ProductConnection, error)
	Product(ctx context.Context, args ProductArgs) (*gqlmodels.Product, error)
	Collections(ctx context.Context, args CollectionsArgs) ([]*gqlmodels.Collection, error)
	Search(ctx context.Context, args SearchArgs) (*gqlmodels.SearchResult, error)
	Cart(ctx context.Context) (*gqlmodels.Cart, error)
	Extension(ctx context.Context, args ExtensionArgs) (*string, error)
}

// MutationResolver is the Mutation root. graphql-go resolves both roots on one value.
type MutationResolver interface {
	AddToCart(ctx context.Context, args AddToCartArgs) (*gqlmodels.Cart, error)
	UpdateCartLine(ctx context.Context, args UpdateCartLineArgs) (*gqlmodels.Cart, error)
	RemoveCartLine(ctx context.Context, args RemoveCartLineArgs) (*gqlmodels.Cart, error)
	SubscribeNewsletter(ctx context.Context, args SubscribeNewsletterArgs) (*gqlmodels.NewsletterResult, error)
}
