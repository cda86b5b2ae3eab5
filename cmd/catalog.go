package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/catalog"
	"lunelle.GO/service/shopify"
)

var (
	listCategory string
	listMin      string
	listMax      string
	listSort     string
	listQuery    string
	listFirst    int
	listAfter    string
	showOptions  []string
	searchCat    string
	searchSize   int
)

var productsListCmd = &cobra.Command{
	Use:   "products:list",
	Short: "List storefront products with the shop filters",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		f := catalog.ProductFilter{
			Category: listCategory,
			PriceMin: catalog.ParsePrice(listMin),
			PriceMax: catalog.ParsePrice(listMax),
			First:    listFirst,
		}
		if listQuery != "" {
			f.Query = catalog.Query(listQuery)
		}
		page, err := catalog.ListPage(ctxOf(c), svc.Catalog, f, listAfter, catalog.ParseSort(listSort))
		if err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		printProducts(c.OutOrStdout(), page.Products)
		if page.HasNextPage {
			fmt.Fprintf(c.OutOrStdout(), "\nMore: --after %s\n", page.EndCursor)
		}
		return nil
	},
}

var productShowCmd = &cobra.Command{
	Use:   "product:show <handle>",
	Short: "Show a product, its options and the selected variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		v := catalog.NewProductView(svc.Catalog, args[0])
		if err := v.Load(ctxOf(c)); err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		st := v.State()
		if st.NotFound {
			return fmt.Errorf("product %q not found", args[0])
		}
		p := *st.Product
		variant := catalog.DefaultVariant(p)
		for _, opt := range showOptions {
			name, value, ok := strings.Cut(opt, "=")
			if !ok {
				return fmt.Errorf("--option wants Name=Value, got %q", opt)
			}
			variant = catalog.SelectOption(p, variant, name, value)
		}

		out := c.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", p.Title, p.Handle)
		fmt.Fprintf(out, "Price: %s\n", p.Price.Format())
		for _, g := range catalog.OptionGroups(p) {
			fmt.Fprintf(out, "%s: %s\n", g.Name, strings.Join(g.Values, ", "))
		}
		if variant != nil {
			fmt.Fprintf(out, "Variant: %s %s [%s]\n", variant.Title, variant.Price.Format(), variant.ID)
		}
		if !catalog.CanAddToCart(variant) {
			fmt.Fprintln(out, "Sold Out")
		}
		if p.Description != "" {
			fmt.Fprintf(out, "\n%s\n", p.Description)
		}
		return nil
	},
}

var collectionsListCmd = &cobra.Command{
	Use:   "collections:list",
	Short: "List storefront collections",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		cols, err := svc.Catalog.ListCollections(ctxOf(c), shopify.DefaultCollectionPageSize)
		if err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "HANDLE\tTITLE")
		for _, col := range cols {
			fmt.Fprintf(w, "%s\t%s\n", col.Handle, col.Title)
		}
		return w.Flush()
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products (Elasticsearch when configured, storefront search otherwise)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		svc := services(ctxOf(c))
		found, err := svc.Search.Find(ctxOf(c), svc.Catalog, strings.Join(args, " "), searchCat, searchSize, 0)
		if err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		printProducts(c.OutOrStdout(), found.Products)
		fmt.Fprintf(c.OutOrStdout(), "\n%d result(s) via %s\n", found.Total, found.Engine)
		return nil
	},
}

func printProducts(out io.Writer, products []entity.Product) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HANDLE\tTITLE\tTYPE\tPRICE\tSTOCK")
	for _, p := range products {
		stock := "in stock"
		if !p.AvailableForSale {
			stock = "sold out"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Handle, p.Title, p.ProductType, p.Price.Format(), stock)
	}
	w.Flush()
}

func init() {
	productsListCmd.Flags().StringVar(&listCategory, "category", "", "Product type")
	productsListCmd.Flags().StringVar(&listMin, "min", "", "Minimum price")
	productsListCmd.Flags().StringVar(&listMax, "max", "", "Maximum price")
	productsListCmd.Flags().StringVar(&listSort, "sort", string(catalog.SortNewest), "newest, price-low, price-high or name")
	productsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Raw storefront search query (overrides the filters)")
	productsListCmd.Flags().IntVar(&listFirst, "first", 0, "Page size")
	productsListCmd.Flags().StringVar(&listAfter, "after", "", "Cursor of the previous page")
	productShowCmd.Flags().StringArrayVarP(&showOptions, "option", "o", nil, "Select an option, e.g. -o Size=M")
	searchCmd.Flags().StringVar(&searchCat, "category", "", "Product type")
	searchCmd.Flags().IntVar(&searchSize, "size", 20, "Number of results")
	rootCmd.AddCommand(productsListCmd, productShowCmd, collectionsListCmd, searchCmd)
}
