package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/model"
	"storefront-client/internal/viewmodel"
)

// linesCmd builds the cart or wishlist command. Guests work against the
// local store; signed-in users against the server.
func (c *cli) linesCmd(name, short string) *cobra.Command {
	cmd := &cobra.Command{Use: name, Short: short}

	open := func() *viewmodel.Lines {
		if name == "cart" {
			return viewmodel.Cart(c.app.session, c.app.cart, c.app.guestCart, c.app.logger)
		}
		return viewmodel.Wishlist(c.app.session, c.app.wishlist, c.app.guestWishlist, c.app.logger)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := open()
			defer vm.Close()
			if err := vm.Load(cmd.Context()); err != nil {
				return err
			}
			return c.printLines(cmd, vm)
		},
	}

	var (
		variantID, productName, variantName, price, variantPrice string
		qty                                                      int
	)
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product := model.ProductRef{ID: model.ID(args[0]), Name: productName}
			if price != "" {
				d, err := model.ParseAmount(price)
				if err != nil {
					return err
				}
				product.Price = d
			}
			var variant *model.VariantRef
			if variantID != "" {
				variant = &model.VariantRef{ID: model.ID(variantID), Name: variantName}
				if variantPrice != "" {
					d, err := model.ParseAmount(variantPrice)
					if err != nil {
						return err
					}
					variant.Price = d
				}
			}

			vm := open()
			defer vm.Close()
			if err := vm.Add(cmd.Context(), product, variant, qty); err != nil {
				return err
			}
			return c.printLines(cmd, vm)
		},
	}
	add.Flags().StringVar(&variantID, "variant", "", "variant id")
	add.Flags().IntVarP(&qty, "quantity", "q", 1, "quantity")
	add.Flags().StringVar(&productName, "name", "", "product name (guest only)")
	add.Flags().StringVar(&price, "price", "", "unit price (guest only)")
	add.Flags().StringVar(&variantName, "variant-name", "", "variant name (guest only)")
	add.Flags().StringVar(&variantPrice, "variant-price", "", "variant price (guest only)")

	update := &cobra.Command{
		Use:   "update <line-id> <quantity>",
		Short: "Set a line's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			vm := open()
			defer vm.Close()
			if err := vm.UpdateQuantity(cmd.Context(), model.ID(args[0]), n); err != nil {
				return err
			}
			return c.printLines(cmd, vm)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <line-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := open()
			defer vm.Close()
			if err := vm.Remove(cmd.Context(), model.ID(args[0])); err != nil {
				return err
			}
			return c.printLines(cmd, vm)
		},
	}

	cmd.AddCommand(list, add, update, remove)
	return cmd
}

func (c *cli) printLines(cmd *cobra.Command, vm *viewmodel.Lines) error {
	st := vm.State()
	p := newPrinter(cmd.OutOrStdout(), c.output)
	if c.output == "json" {
		return p.json(st)
	}

	rows := make([][]string, 0, len(st.Data))
	for _, l := range st.Data {
		variant := "-"
		if l.Variant != nil {
			variant = l.Variant.Name
		}
		rows = append(rows, []string{
			l.ID.String(),
			l.Product.Name,
			variant,
			strconv.Itoa(l.Quantity),
			model.FormatMoney(l.Price),
			model.FormatMoney(l.Total),
		})
	}
	if err := p.table(st.Data, []string{"ID", "Product", "Variant", "Qty", "Price", "Total"}, rows); err != nil {
		return err
	}

	source := "guest"
	if c.app.session.Authenticated() {
		source = "account"
	}
	p.note("Total %s (%s)", vm.Total(), source)
	return nil
}
