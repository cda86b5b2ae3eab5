package resolvers

import (
	"context"
	"encoding/json"
	"errors"

	"lunelle.GO/app"
	"lunelle.GO/graphql"
	gqlregistry "lunelle.GO/graphql/registry"
	"lunelle.GO/service/cart"
	"lunelle.GO/service/newsletter"
	"lunelle.GO/service/shopify"
)

func init() {
	gqlregistry.RegisterRootResolverFactory(func(svc *app.Services) interface{} {
		return &Resolver{svc: svc}
	})
}

var (
	_ graphql.QueryResolver    = (*Resolver)(nil)
	_ graphql.MutationResolver = (*Resolver)(nil)
)

// Resolver is the single root for Query and Mutation fields.
// Methods live in catalog.go, cart.go and newsletter.go. New fields: use
// RegisterSchemaExtension + add a method here, or _extension for dynamic resolvers.
type Resolver struct {
	svc *app.Services
}

// Extension dispatches to registered custom resolvers.
func (r *Resolver) Extension(ctx context.Context, args graphql.ExtensionArgs) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, &resolverError{msg: "args must be a JSON object", code: "BAD_USER_INPUT"}
		}
	}
	out, err := gqlregistry.Resolve(graphql.WithServices(ctx, r.svc), args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// resolverError carries a shopper-facing message and a machine-readable code.
type resolverError struct {
	msg  string
	code string
}

func (e *resolverError) Error() string { return e.msg }

func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// toResolverError maps service errors to GraphQL errors with a stable code.
func toResolverError(err error) error {
	var ge *shopify.GatewayError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shopify.ErrNotConfigured):
		return &resolverError{msg: shopify.Message(err), code: "NOT_CONFIGURED"}
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, newsletter.ErrInvalidEmail):
		return &resolverError{msg: err.Error(), code: "BAD_USER_INPUT"}
	case errors.Is(err, cart.ErrCartNotInitialized):
		return &resolverError{msg: err.Error(), code: "CART_NOT_INITIALIZED"}
	case errors.As(err, &ge) && len(ge.UserErrors) > 0:
		return &resolverError{msg: ge.Message, code: "USER_ERROR"}
	case errors.As(err, &ge):
		return &resolverError{msg: ge.Message, code: "GATEWAY_ERROR"}
	}
	return err
}
