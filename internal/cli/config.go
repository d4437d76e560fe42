package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/config"
)

// ConfigView is the JSON shape of the effective settings.
type ConfigView struct {
	DB       string `json:"db"`
	Currency string `json:"currency"`
	Role     string `json:"role"`
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	var env bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Long: `Print the database path, currency and role in effect after the
environment and flags are applied. With --env, list the environment
variables grocer reads instead.

Examples:
  grocer config
  grocer config --env`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			if env {
				if err := config.Usage(out.Writer); err != nil {
					return report(out, WrapExitError(ExitCommandError, "failed to list environment variables", err), ErrCodeGeneric)
				}
				return nil
			}

			cfg := rootOpts.config()
			view := ConfigView{DB: cfg.DB, Currency: cfg.Currency, Role: cfg.ParsedRole().String()}
			return out.Render(view, func(w io.Writer) {
				fmt.Fprintf(w, "db:       %s\n", view.DB)
				fmt.Fprintf(w, "currency: %s\n", view.Currency)
				fmt.Fprintf(w, "role:     %s\n", view.Role)
			})
		},
	}

	cmd.Flags().BoolVar(&env, "env", false, "list recognised environment variables")

	return cmd
}
