package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/domain"
)

// NewSalesCommand creates the sales command group.
func NewSalesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Inspect the sale ledger",
	}

	cmd.AddCommand(newSalesListCommand(rootOpts))
	cmd.AddCommand(newSalesShowCommand(rootOpts))
	cmd.AddCommand(newSalesNextIDCommand(rootOpts))
	cmd.AddCommand(newSalesClearCommand(rootOpts))

	return cmd
}

func newSalesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every recorded sale in id order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			sales, err := a.ledger.ListAll(cmd.Context())
			if err != nil {
				return a.fail(err)
			}

			views := make([]SaleView, 0, len(sales))
			for _, s := range sales {
				views = append(views, saleView(s))
			}
			return a.out.Render(views, func(w io.Writer) {
				if len(sales) == 0 {
					fmt.Fprintln(w, "No sales.")
					return
				}
				for i, s := range sales {
					if i > 0 {
						fmt.Fprintln(w)
					}
					writeSale(w, s, rootOpts.Currency)
				}
			})
		},
	}
}

func newSalesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one sale",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			id, err := domain.ParseQuantity(args[0])
			if err != nil || id == 0 {
				return badArgs(a.out, "invalid sale id %q", args[0])
			}
			sale, err := a.ledger.Get(cmd.Context(), id)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(saleView(sale), func(w io.Writer) {
				writeSale(w, sale, rootOpts.Currency)
			})
		},
	}
}

func newSalesNextIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "next-id",
		Short:         "Print the id the next sale will get",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			id, err := a.ledger.NextID(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(map[string]any{"next_id": id}, func(w io.Writer) {
				fmt.Fprintln(w, id)
			})
		},
	}
}

func newSalesClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Remove every recorded sale (admin)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := a.requireAdmin("sales clear"); err != nil {
				return err
			}
			if err := requireConfirm(a.out, yes, "sales clear"); err != nil {
				return err
			}
			n, err := a.ledger.ClearAll(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(map[string]any{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Removed %d sale(s)\n", n)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removing every sale")

	return cmd
}
