package graphql

import (
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	graphqlpkg "lunelle.GO/graphql"
	"lunelle.GO/graphqlserver"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

func RegisterGraphQLRoutes(e *echo.Echo, svc *app.Services) {
	schema, err := graphqlserver.NewSchema(svc)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	registerRoutes(e, schema, svc)
}

// RegisterGraphQLRoutesWithSchema registers /graphql with a custom schema (for tests with mocks).
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *graphql.Schema, svc *app.Services) {
	registerRoutes(e, schema, svc)
}

func registerRoutes(e *echo.Echo, schema *graphql.Schema, svc *app.Services) {
	h := servicesMiddleware(graphqlserver.Handler(schema), svc)
	e.POST("/graphql", echo.WrapHandler(h))
	e.GET("/graphql", echo.WrapHandler(h))
	e.GET("/playground", echo.WrapHandler(playgroundHandler()))
}

// servicesMiddleware exposes svc to _extension resolvers through the request context.
// The visitor cart binding is already there from the visitor middleware.
func servicesMiddleware(next http.Handler, svc *app.Services) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(graphqlpkg.WithServices(r.Context(), svc)))
	})
}

func playgroundHandler() http.Handler {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>Lunelle GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init(document.getElementById('root'), { endpoint: '/graphql', settings: { 'request.credentials': 'same-origin' } });
	})</script>
</body>
</html>`
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})
}
