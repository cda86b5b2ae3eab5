package graphql

import (
	"strings"
	"sync"

	_ "embed"

	gql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphqls
var schemaBase string

var (
	schemaExtensions []string
	schemaMu         sync.Mutex
)

// RegisterSchemaExtension appends schema to the base. Call from init() in custom packages.
func RegisterSchemaExtension(schema string) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	schemaExtensions = append(schemaExtensions, strings.TrimSpace(schema))
}

// Schema returns base schema + registered extensions.
func Schema() string {
	schemaMu.Lock()
	ext := schemaExtensions
	schemaMu.Unlock()
	if len(ext) == 0 {
		return schemaBase
	}
	return schemaBase + "\n\n" + strings.Join(ext, "\n\n")
}

// --- Schema arg types (used by resolvers for graphql-go method matching) ---

type ProductsArgs struct {
	First    *int32
	After    *string
	Category *string
	MinPrice *string
	MaxPrice *string
	Sort     *string
	Query    *string
}

type ProductArgs struct {
	Handle string
}

type CollectionsArgs struct {
	First *int32
}

type SearchArgs struct {
	Query    string
	Category *string
	First    *int32
	Offset   *int32
}

type ExtensionArgs struct {
	Name string
	Args *string
}

type AddToCartArgs struct {
	VariantID gql.ID
	Quantity  *int32
}

type UpdateCartLineArgs struct {
	LineID   gql.ID
	Quantity int32
}

type RemoveCartLineArgs struct {
	LineID gql.ID
}

type SubscribeNewsletterArgs struct {
	Email  string
	Source *string
}
