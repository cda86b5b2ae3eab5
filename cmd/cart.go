package cmd

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lunelle.GO/service/cart"
	"lunelle.GO/service/shopify"
)

// localCart opens the CLI cart. Its id lives in a file under LUNELLE_HOME.
func localCart(ctx context.Context) (*cart.Session, error) {
	svc := services(ctx)
	ids, err := cart.DefaultFileStore()
	if err != nil {
		return nil, err
	}
	s := cart.NewSession(svc.Shopify, ids, cart.WithSerializedMutations())
	if err := s.Init(ctx); err != nil {
		return nil, fmt.Errorf("%s", shopify.Message(err))
	}
	return s, nil
}

var cartShowCmd = &cobra.Command{
	Use:   "cart:show",
	Short: "Show the local cart",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		s, err := localCart(ctxOf(c))
		if err != nil {
			return err
		}
		return printCart(c, s)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "cart:add <variant-id> [quantity]",
	Short: "Add a variant to the local cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(c *cobra.Command, args []string) error {
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			qty = n
		}
		s, err := localCart(ctxOf(c))
		if err != nil {
			return err
		}
		if err := s.AddItem(ctxOf(c), args[0], qty); err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		return printCart(c, s)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "cart:update <line-id> <quantity>",
	Short: "Change a line quantity; 0 removes the line",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be a number: %w", err)
		}
		s, err := localCart(ctxOf(c))
		if err != nil {
			return err
		}
		if err := s.UpdateItem(ctxOf(c), args[0], qty); err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		return printCart(c, s)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "cart:remove <line-id>",
	Short: "Remove a line from the local cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		s, err := localCart(ctxOf(c))
		if err != nil {
			return err
		}
		if err := s.RemoveItem(ctxOf(c), args[0]); err != nil {
			return fmt.Errorf("%s", shopify.Message(err))
		}
		return printCart(c, s)
	},
}

func printCart(c *cobra.Command, s *cart.Session) error {
	out := c.OutOrStdout()
	snap := s.Snapshot()
	if snap.Cart.IsEmpty() {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tPRODUCT\tVARIANT\tQTY\tTOTAL")
	for _, l := range snap.Cart.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Merchandise.Product.Title, l.Merchandise.Title, l.Quantity, l.Total.Format())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nItems: %d  Subtotal: %s  Total: %s\n", snap.ItemCount, snap.Cart.Cost.Subtotal.Format(), snap.Cart.Cost.Total.Format())
	fmt.Fprintf(out, "Checkout: %s\n", snap.CheckoutURL)
	return nil
}

func init() {
	rootCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd)
}
