// Package custom shows how site-specific code plugs into the storefront:
// a GraphQL extension, a CLI command, a cron job and an HTTP route, all
// registered from init.
package custom

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/cmd"
	"lunelle.GO/config"
	"lunelle.GO/cron"
	"lunelle.GO/graphql"
	gqlregistry "lunelle.GO/graphql/registry"
)

// Status summarizes which backends are wired.
type Status struct {
	Shopify    bool `json:"shopify"`
	Newsletter bool `json:"newsletter"`
	Search     bool `json:"search"`
	Redis      bool `json:"redis"`
	Sessions   int  `json:"cartSessions"`
}

// ShopStatus reports the configured backends of svc.
func ShopStatus(svc *app.Services) Status {
	return Status{
		Shopify:    svc.Shopify.Configured(),
		Newsletter: svc.Newsletter.Configured(),
		Search:     svc.Search.Configured(),
		Redis:      config.RedisClient != nil,
		Sessions:   svc.Carts.Len(),
	}
}

func init() {
	// GraphQL extension: { _extension(name: "shopStatus") }
	gqlregistry.Register("shopStatus", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		svc := graphql.ServicesFromContext(ctx)
		if svc == nil {
			return nil, fmt.Errorf("shopStatus: services not in context")
		}
		return ShopStatus(svc), nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:status",
		Short: "Show which storefront backends are configured",
		Run: func(c *cobra.Command, args []string) {
			st := ShopStatus(app.MustGet(context.Background()))
			fmt.Fprintf(c.OutOrStdout(), "shopify=%t newsletter=%t search=%t redis=%t\n", st.Shopify, st.Newsletter, st.Search, st.Redis)
		},
	})

	// Cron job
	cron.Register("customstatus", "@every 30m", func(args ...string) {
		st := ShopStatus(app.MustGet(context.Background()))
		fmt.Printf("Custom cron: %d live cart sessions\n", st.Sessions)
	})

	// HTTP route
	api.RegisterRoute(func(e *echo.Echo, svc *app.Services) {
		e.GET("/healthz", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"status": "ok", "backends": ShopStatus(svc)})
		})
	})
}
