package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"lunelle.GO/app"
	"lunelle.GO/graphql"
	"lunelle.GO/graphql/registry"
	_ "lunelle.GO/graphql/resolvers"
)

// MaxDepth bounds query nesting; the storefront schema is at most five levels deep.
const MaxDepth = 10

// NewSchema parses base schema + extensions against the registered root resolver.
func NewSchema(svc *app.Services) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), registry.GetRootResolver(svc),
		gql.UseFieldResolvers(),
		gql.MaxDepth(MaxDepth),
	)
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
