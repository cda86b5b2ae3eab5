// Standalone GraphQL server, run with: go run ./cmd/graphql
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	graphqlApi "lunelle.GO/api/graphql"
	"lunelle.GO/app"
	"lunelle.GO/config"
	"lunelle.GO/core/visitor"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	config.InitRedis()
	log.Println(config.PingRedis(context.Background()))

	svc := app.MustGet(context.Background())
	defer svc.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(visitor.Middleware(svc.Cookies, svc.Carts))
	graphqlApi.RegisterGraphQLRoutes(e, svc)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "univers", "doom", "larry3d", "puffy", "rectangles", "bigchief", "cosmic"}
	fig := figure.NewFigure("Lunelle GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	port := svc.Config.Port
	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", port, port)
	e.Logger.Fatal(e.Start(":" + port))
}
