package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/seed"
)

// ItemView is the JSON shape of an item.
type ItemView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func itemView(it domain.Item) ItemView {
	return ItemView{ID: it.ID, Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice.String()}
}

func itemViews(items []domain.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, itemView(it))
	}
	return views
}

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the item catalog",
		Long: `Add, restock, edit and remove items, and look them up.

Item names are unique and case-sensitive; search is case-insensitive.
edit, delete, clear and import require --role admin.`,
	}

	cmd.AddCommand(newItemAddCommand(rootOpts))
	cmd.AddCommand(newItemRestockCommand(rootOpts))
	cmd.AddCommand(newItemEditCommand(rootOpts))
	cmd.AddCommand(newItemDeleteCommand(rootOpts))
	cmd.AddCommand(newItemClearCommand(rootOpts))
	cmd.AddCommand(newItemGetCommand(rootOpts))
	cmd.AddCommand(newItemListCommand(rootOpts))
	cmd.AddCommand(newItemSearchCommand(rootOpts))
	cmd.AddCommand(newItemImportCommand(rootOpts))

	return cmd
}

func newItemAddCommand(rootOpts *RootOptions) *cobra.Command {
	var qty int64
	var price string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item, or add stock to an existing one",
		Long: `Add a new item to the catalog.

If an item with the same name exists, --qty is added to its stock and its
stored price is kept.

Examples:
  grocer item add Rice --qty 5 --price 2.50`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			unitPrice, err := domain.ParseAmount(price)
			if err != nil {
				return a.fail(err)
			}
			id, err := a.catalog.AddNew(cmd.Context(), args[0], qty, unitPrice)
			if err != nil {
				return a.fail(err)
			}
			item, err := a.catalog.GetByID(cmd.Context(), id)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(itemView(item), func(w io.Writer) {
				fmt.Fprintf(w, "✓ %s (id %d): %d in stock at %s\n",
					item.Name, item.ID, item.Quantity, domain.FormatPrice(item.UnitPrice, rootOpts.Currency))
			})
		},
	}

	cmd.Flags().Int64Var(&qty, "qty", 0, "quantity to stock")
	cmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 2.50")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newItemRestockCommand(rootOpts *RootOptions) *cobra.Command {
	var qty int64

	cmd := &cobra.Command{
		Use:           "restock <name>",
		Short:         "Add stock to an existing item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			newQty, err := a.catalog.AddExisting(cmd.Context(), args[0], qty)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(map[string]any{"name": args[0], "quantity": newQty}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ %s: %d in stock\n", args[0], newQty)
			})
		},
	}

	cmd.Flags().Int64Var(&qty, "qty", 0, "quantity to add")
	_ = cmd.MarkFlagRequired("qty")

	return cmd
}

func newItemEditCommand(rootOpts *RootOptions) *cobra.Command {
	var name, price string
	var qty int64

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's name, quantity or price (admin)",
		Long: `Edit the item with the given id. Fields whose flag is not given keep
their current value. Past sales keep the name and price they were sold at.

Examples:
  grocer item edit 3 --price 2.75 --role admin
  grocer item edit 3 --name "Basmati Rice" --qty 12 --role admin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := a.requireAdmin("item edit"); err != nil {
				return err
			}

			id, err := domain.ParseQuantity(args[0])
			if err != nil || id == 0 {
				return badArgs(a.out, "invalid item id %q", args[0])
			}

			ctx := cmd.Context()
			current, err := a.catalog.GetByID(ctx, id)
			if err != nil {
				return a.fail(err)
			}

			newName, newQty, newPrice := current.Name, current.Quantity, current.UnitPrice
			flags := cmd.Flags()
			if flags.Changed("name") {
				newName = name
			}
			if flags.Changed("qty") {
				newQty = qty
			}
			if flags.Changed("price") {
				if newPrice, err = domain.ParseAmount(price); err != nil {
					return a.fail(err)
				}
			}

			if err := a.catalog.Edit(ctx, id, newName, newQty, newPrice); err != nil {
				return a.fail(err)
			}
			item, err := a.catalog.GetByID(ctx, id)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(itemView(item), func(w io.Writer) {
				fmt.Fprintf(w, "✓ Updated item %d: %s, %d in stock at %s\n",
					item.ID, item.Name, item.Quantity, domain.FormatPrice(item.UnitPrice, rootOpts.Currency))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new item name")
	cmd.Flags().Int64Var(&qty, "qty", 0, "new quantity")
	cmd.Flags().StringVar(&price, "price", "", "new unit price")

	return cmd
}

func newItemDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Remove an item from the catalog (admin)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := a.requireAdmin("item delete"); err != nil {
				return err
			}
			if err := a.catalog.Delete(cmd.Context(), args[0]); err != nil {
				return a.fail(err)
			}
			return a.out.Render(map[string]any{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Deleted %s\n", args[0])
			})
		},
	}
}

func newItemClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Remove every item (admin)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := a.requireAdmin("item clear"); err != nil {
				return err
			}
			if err := requireConfirm(a.out, yes, "item clear"); err != nil {
				return err
			}
			n, err := a.catalog.ClearAll(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(map[string]any{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Removed %d item(s)\n", n)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removing every item")

	return cmd
}

func newItemGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <name>",
		Short:         "Show one item by its exact name",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			item, err := a.catalog.GetByName(cmd.Context(), args[0])
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(itemView(item), func(w io.Writer) {
				writeItemTable(w, []domain.Item{item}, rootOpts.Currency)
			})
		},
	}
}

func newItemListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every item sorted by name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemQuery(rootOpts, cmd, func(ctx context.Context, a *app) ([]domain.Item, error) {
				return a.query.ViewAll(ctx)
			})
		},
	}
}

func newItemSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <substring>",
		Short: "List items whose name contains substring",
		Long: `Case-insensitive substring search over item names.

Examples:
  grocer item search rice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemQuery(rootOpts, cmd, func(ctx context.Context, a *app) ([]domain.Item, error) {
				return a.query.SearchByName(ctx, args[0])
			})
		},
	}
}

func runItemQuery(rootOpts *RootOptions, cmd *cobra.Command, fetch func(context.Context, *app) ([]domain.Item, error)) error {
	a, closeFn, err := openApp(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	items, err := fetch(cmd.Context(), a)
	if err != nil {
		return a.fail(err)
	}
	return a.out.Render(itemViews(items), func(w io.Writer) {
		if len(items) == 0 {
			fmt.Fprintln(w, "No items.")
			return
		}
		writeItemTable(w, items, rootOpts.Currency)
	})
}

func newItemImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed-dir>",
		Short: "Load items from CUE seed files (admin)",
		Long: `Import every item declared in the CUE files of seed-dir.

The files are validated first; nothing is imported if any entry is invalid.
Existing items are restocked with the declared quantity.

Examples:
  grocer item import ./seed --role admin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := a.requireAdmin("item import"); err != nil {
				return err
			}

			entries, err := seed.LoadDir(args[0])
			if err != nil {
				return outputSeedLoadError(a.out, err)
			}
			a.out.VerboseLog("Loaded %d seed entr(ies) from %s", len(entries), args[0])

			n, err := seed.Import(cmd.Context(), a.catalog, entries, a.log)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Render(map[string]any{"imported": n}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Imported %d item(s)\n", n)
			})
		},
	}
}

// writeItemTable prints items as aligned columns.
func writeItemTable(w io.Writer, items []domain.Item, currency string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.ID, it.Name, it.Quantity, domain.FormatPrice(it.UnitPrice, currency))
	}
	_ = tw.Flush()
}
