package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/catalog"
	"github.com/roach88/grocer/internal/domain"
	"github.com/roach88/grocer/internal/engine"
	"github.com/roach88/grocer/internal/ledger"
	"github.com/roach88/grocer/internal/query"
	"github.com/roach88/grocer/internal/store"
)

// CLI error codes for failures that are not domain errors.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeStorage    = "E002" // Database open or query failure
	ErrCodeForbidden  = "E003" // Role may not run this command
	ErrCodeBadArgs    = "E004" // Malformed command arguments
	ErrCodeNotConfirm = "E005" // Destructive command run without --yes
)

// app wires the store and the services over it for one command run.
type app struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	engine  *engine.Engine
	query   *query.Facade
	out     *OutputFormatter
	opts    *RootOptions
	log     *logrus.Entry
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openApp opens the database and assembles the services. The caller must
// call close when done.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, func(), error) {
	out := newFormatter(opts, cmd)
	log := logrus.NewEntry(opts.logger()).WithField("command", cmd.Name())

	if opts.DB == "" {
		return nil, nil, report(out, NewExitError(ExitCommandError, "no database given: use --db or GROCER_DB"), ErrCodeBadArgs)
	}

	log.WithField("path", opts.DB).Debug("opening database")
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, nil, report(out, WrapExitError(ExitCommandError, "failed to open database", err), ErrCodeStorage)
	}

	cat := catalog.New(st, catalog.WithLogger(log))
	led := ledger.New(st, ledger.WithLogger(log))
	a := &app{
		catalog: cat,
		ledger:  led,
		engine:  engine.New(cat, led, engine.WithLogger(log)),
		query:   query.New(cat),
		out:     out,
		opts:    opts,
		log:     log,
	}

	closeFn := func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Error("error closing database")
		}
	}
	return a, closeFn, nil
}

// requireAdmin rejects management commands run as a regular user.
func (a *app) requireAdmin(what string) error {
	if a.opts.role().IsAdmin() {
		return nil
	}
	return report(a.out, NewExitError(ExitCommandError, fmt.Sprintf("%s requires the admin role (--role admin)", what)), ErrCodeForbidden)
}

// fail reports err and converts it into an ExitError. Domain errors exit
// with ExitFailure and keep their code; anything else is a storage or
// command error.
func (a *app) fail(err error) error {
	return failWith(a.out, err)
}

func failWith(out *OutputFormatter, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		details := map[string]any{}
		if de.Name != "" {
			details["item"] = de.Name
		}
		if de.Code == domain.ErrCodeInsufficientStock {
			details["available"] = de.Available
		}
		if len(details) == 0 {
			details = nil
		}
		_ = out.Error(string(de.Code), de.Message, details)
		return &ExitError{Code: ExitFailure, Message: de.Error(), Err: err, Reported: true}
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return report(out, exitErr, ErrCodeGeneric)
	}
	return report(out, WrapExitError(ExitCommandError, "command failed", err), ErrCodeStorage)
}

// report writes exitErr through out unless it was written already.
func report(out *OutputFormatter, exitErr *ExitError, code string) error {
	if exitErr.Reported {
		return exitErr
	}
	_ = out.Error(code, exitErr.Error(), nil)
	exitErr.Reported = true
	return exitErr
}

// badArgs reports a malformed argument.
func badArgs(out *OutputFormatter, format string, args ...any) error {
	return report(out, NewExitError(ExitCommandError, fmt.Sprintf(format, args...)), ErrCodeBadArgs)
}

// requireConfirm rejects a destructive command run without --yes.
func requireConfirm(out *OutputFormatter, yes bool, what string) error {
	if yes {
		return nil
	}
	return report(out, NewExitError(ExitCommandError, fmt.Sprintf("%s is irreversible: pass --yes to confirm", what)), ErrCodeNotConfirm)
}
