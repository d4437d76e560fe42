package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/engine"
)

// SaleLineView is the JSON shape of a sale line.
type SaleLineView struct {
	ItemID    int64  `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// SaleView is the JSON shape of a committed sale.
type SaleView struct {
	ID        int64          `json:"id"`
	Lines     []SaleLineView `json:"lines"`
	Total     string         `json:"total"`
	Timestamp string         `json:"timestamp"`
}

func saleView(s domain.Sale) SaleView {
	lines := make([]SaleLineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineView{
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			Quantity:  l.QuantitySold,
			UnitPrice: l.UnitPriceAtSale.String(),
			Subtotal:  l.Subtotal().String(),
		})
	}
	return SaleView{
		ID:        s.ID,
		Lines:     lines,
		Total:     s.TotalPrice.String(),
		Timestamp: s.Timestamp.UTC().Format(time.RFC3339),
	}
}

// ReceiptView is the JSON output of sell.
type ReceiptView struct {
	Sale     SaleView `json:"sale"`
	Tendered string   `json:"tendered,omitempty"`
	Change   string   `json:"change,omitempty"`
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	var tendered string

	cmd := &cobra.Command{
		Use:   "sell <name>=<qty>...",
		Short: "Sell items in one checkout",
		Long: `Sell one or more items as a single sale.

Each argument names an item and a quantity. Stock is reserved line by line;
if any line fails, every reserved line is returned to stock and nothing is
recorded. With --tendered the change due is printed; a negative value means
the payment is short.

Exit codes:
  0 - Sale recorded
  1 - Unknown item, insufficient stock or invalid quantity
  2 - Command error (bad arguments, database not found, etc.)

Examples:
  grocer sell Rice=2 "Oat Milk=1"
  grocer sell Rice=2 --tendered 10`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			requests, err := parseLineRequests(args)
			if err != nil {
				return a.fail(err)
			}
			if tendered != "" {
				if _, err := domain.ParseAmount(tendered); err != nil {
					return a.fail(err)
				}
			}

			sale, err := a.engine.Checkout(cmd.Context(), requests)
			if err != nil {
				return a.fail(err)
			}

			receipt := ReceiptView{Sale: saleView(sale)}
			var change decimal.Decimal
			if tendered != "" {
				change, err = engine.ComputeChange(tendered, sale.TotalPrice)
				if err != nil {
					return a.fail(err)
				}
				receipt.Tendered = tendered
				receipt.Change = change.String()
			}

			return a.out.Render(receipt, func(w io.Writer) {
				writeSale(w, sale, rootOpts.Currency)
				if receipt.Change != "" {
					fmt.Fprintf(w, "Change: %s\n", domain.FormatPrice(change, rootOpts.Currency))
				}
			})
		},
	}

	cmd.Flags().StringVar(&tendered, "tendered", "", "amount paid, to compute change")

	return cmd
}

// NewChangeCommand creates the change command.
func NewChangeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "change <tendered> <total>",
		Short: "Compute change due for a payment",
		Long: `Print tendered minus total. A negative result means the payment is
short; it is never rounded up to zero.

Examples:
  grocer change 20 12.45`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)

			total, err := decimal.NewFromString(strings.TrimSpace(args[1]))
			if err != nil {
				return badArgs(out, "total %q is not a decimal amount", args[1])
			}
			change, err := engine.ComputeChange(args[0], total)
			if err != nil {
				return failWith(out, err)
			}
			return out.Render(map[string]any{"change": change.String()}, func(w io.Writer) {
				fmt.Fprintln(w, domain.FormatPrice(change, rootOpts.Currency))
			})
		},
	}
}

// parseLineRequests parses name=qty arguments. The last '=' separates the
// quantity so names may contain '='.
func parseLineRequests(args []string) ([]engine.LineRequest, error) {
	requests := make([]engine.LineRequest, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 {
			return nil, domain.NewInvalidInput(fmt.Sprintf("%q is not name=quantity", arg))
		}
		qty, err := domain.ParseQuantity(arg[i+1:])
		if err != nil {
			return nil, err
		}
		requests = append(requests, engine.LineRequest{Name: arg[:i], Quantity: qty})
	}
	return requests, nil
}

// writeSale prints a sale as a receipt.
func writeSale(w io.Writer, sale domain.Sale, currency string) {
	fmt.Fprintf(w, "Sale #%d  %s\n", sale.ID, sale.Timestamp.UTC().Format(time.RFC3339))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, l := range sale.Lines {
		fmt.Fprintf(tw, "  %s\t%d x %s\t%s\n", l.ItemName, l.QuantitySold,
			domain.FormatPrice(l.UnitPriceAtSale, currency), domain.FormatPrice(l.Subtotal(), currency))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", domain.FormatPrice(sale.TotalPrice, currency))
}
