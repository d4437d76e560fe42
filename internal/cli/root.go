package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/config"
	"github.com/roach88/grocer/internal/domain"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DB       string // SQLite database path
	Role     string // "admin" | "user"
	Currency string // ISO 4217 code for printed prices

	// Logger receives diagnostic entries. Built from the flags before any
	// command runs; commands constructed directly in tests fall back to a
	// discarding logger.
	Logger *logrus.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the grocer CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "grocer",
		Short: "grocer - inventory and point of sale",
		Long: `A small store's stock list and till.

Items are kept in a SQLite database. Selling reserves stock line by line
and records every completed sale in an append-only ledger.

Settings come from GROCER_DB, GROCER_CURRENCY and GROCER_ROLE;
flags override them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := applyConfig(cmd, opts); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Logger = newLogger(opts, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database (default $GROCER_DB or grocer.db)")
	cmd.PersistentFlags().StringVar(&opts.Role, "role", "", "acting role: admin|user (default $GROCER_ROLE or user)")
	cmd.PersistentFlags().StringVar(&opts.Currency, "currency", "", "currency for printed prices (default $GROCER_CURRENCY or USD)")

	// Add subcommands
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewChangeCommand(opts))
	cmd.AddCommand(NewSalesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// applyConfig fills every setting whose flag was not given from the
// environment, then validates the result.
func applyConfig(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = opts.DB
	}
	if flags.Changed("role") {
		cfg.Role = opts.Role
	}
	if flags.Changed("currency") {
		cfg.Currency = opts.Currency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts.DB = cfg.DB
	opts.Role = cfg.Role
	opts.Currency = cfg.Currency
	return nil
}

// newLogger writes to w: JSON entries with --format json, text otherwise.
// --verbose lowers the level to Debug.
func newLogger(opts *RootOptions, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if opts.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	log.SetLevel(logrus.WarnLevel)
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// logger returns the configured logger, or one that discards everything.
func (o *RootOptions) logger() *logrus.Logger {
	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetOutput(io.Discard)
	}
	return o.Logger
}

// role returns the acting role. Unknown values were rejected by
// applyConfig; commands built directly in tests default to a regular user.
func (o *RootOptions) role() domain.Role {
	return o.config().ParsedRole()
}

// config returns the effective settings as a config.Config.
func (o *RootOptions) config() config.Config {
	return config.Config{DB: o.DB, Currency: o.Currency, Role: o.Role}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
