package graphql

import (
	"context"

	"lunelle.GO/app"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyServices contextKey = "services"

// WithServices attaches the storefront services for extension resolvers.
func WithServices(ctx context.Context, svc *app.Services) context.Context {
	return context.WithValue(ctx, CtxKeyServices, svc)
}

// ServicesFromContext returns the services attached by the /graphql handler, or nil.
func ServicesFromContext(ctx context.Context) *app.Services {
	svc, _ := ctx.Value(CtxKeyServices).(*app.Services)
	return svc
}
