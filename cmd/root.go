package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"lunelle.GO/app"
)

var rootCmd = &cobra.Command{
	Use:   "lunelle",
	Short: "Lunelle storefront command line",
	Long:  "Browse the Shopify catalog, manage a local cart and run maintenance tasks for the Lunelle storefront.",
	SilenceUsage: true,
}

// services is swapped by tests for services backed by a fake storefront.
var services = func(ctx context.Context) *app.Services {
	return app.MustGet(ctx)
}

// Execute applies registered commands and runs the root command.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func ctxOf(c *cobra.Command) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
