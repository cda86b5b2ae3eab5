package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lunelle.GO/api"
	_ "lunelle.GO/api/admin"
	_ "lunelle.GO/api/availability"
	_ "lunelle.GO/api/cart"
	_ "lunelle.GO/api/catalog"
	_ "lunelle.GO/api/graphql"
	_ "lunelle.GO/api/media"
	_ "lunelle.GO/api/newsletter"
	"lunelle.GO/app"
	"lunelle.GO/config"
	_ "lunelle.GO/html"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront HTTP server (HTML, JSON API, GraphQL)",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return Serve(ctxOf(c))
	},
}

// Serve runs the storefront until SIGINT or SIGTERM, then shuts down gracefully.
func Serve(ctx context.Context) error {
	config.LoadAppConfig()
	config.InitRedis()
	log.Println(config.PingRedis(ctx))

	shutdownTracing, err := config.InitTracing(ctx, config.AppConfig.AppName)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	svc, err := app.Get(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	if !svc.Shopify.Configured() {
		log.Println("Shopify storefront not configured, catalog and cart requests will fail.")
	}

	e := api.NewServer(svc)
	if svc.Config.Debug {
		for _, r := range e.Routes() {
			log.Printf("route %s %s", r.Method, r.Path)
		}
	}

	srv := &http.Server{
		Addr:              ":" + svc.Config.Port,
		Handler:           otelhttp.NewHandler(e, svc.Config.AppName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("Server running on :%s", svc.Config.Port)
		errc <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	return shutdownTracing(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
