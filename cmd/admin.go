package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lunelle.GO/service/newsletter"
)

var subscribeSource string

var newsletterSubscribeCmd = &cobra.Command{
	Use:   "newsletter:subscribe <email>",
	Short: "Add an email to the newsletter",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		_, err := svc.Newsletter.Subscribe(ctxOf(c), args[0], subscribeSource)
		if err != nil {
			if !errors.Is(err, newsletter.ErrInvalidEmail) {
				return fmt.Errorf("%s (%w)", newsletter.Message(err), err)
			}
			return errors.New(newsletter.Message(err))
		}
		fmt.Fprintln(c.OutOrStdout(), newsletter.SuccessMessage)
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply the newsletter_subscribers migrations to DATABASE_URL",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		if svc.Config.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
		if err := newsletter.Migrate(svc.Config.DatabaseURL); err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

var searchReindexCmd = &cobra.Command{
	Use:   "search:reindex",
	Short: "Rebuild the Elasticsearch product index from the storefront",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		if !svc.Search.Configured() {
			return errors.New("ELASTICSEARCH_HOST is not set")
		}
		if err := svc.Search.EnsureIndex(ctxOf(c)); err != nil {
			return err
		}
		n, err := svc.Search.Reindex(ctxOf(c), svc.Shopify)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Indexed %d products into %s\n", n, svc.Search.Name())
		return nil
	},
}

var cacheFlushCmd = &cobra.Command{
	Use:   "cache:flush",
	Short: "Drop cached catalog responses and resized images",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		n, err := svc.Catalog.Flush(ctxOf(c))
		if err != nil {
			return err
		}
		m := svc.Media.Flush()
		fmt.Fprintf(c.OutOrStdout(), "Flushed %d catalog and %d media entries\n", n, m)
		return nil
	},
}

func init() {
	newsletterSubscribeCmd.Flags().StringVar(&subscribeSource, "source", newsletter.SourceCLI, "Signup source tag")
	rootCmd.AddCommand(newsletterSubscribeCmd, dbMigrateCmd, searchReindexCmd, cacheFlushCmd)
}
