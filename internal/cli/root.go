// Package cli routes the command line to the check and send flows.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/consensus-shipyard/calibration/disburse/internal/data"
	"github.com/consensus-shipyard/calibration/disburse/internal/disburse"
)

// Runtime is everything a command needs once startup has finished.
type Runtime struct {
	Recipients []data.Recipient
	Service    *disburse.Service
	// Close releases resources acquired by Setup. It may be nil.
	Close func() error
}

// Setup performs startup: loading recipients, the wallet and the chain
// connection. It only runs once a valid command has been recognised.
type Setup func(ctx context.Context) (*Runtime, error)

// usageError marks failures caused by a wrong invocation rather than by the
// work itself.
type usageError struct {
	error
}

func (e usageError) Unwrap() error {
	return e.error
}

// IsUsageError reports whether err was caused by a wrong invocation.
func IsUsageError(err error) bool {
	var uerr usageError
	return errors.As(err, &uerr)
}

// Execute runs the command in args. Command names are matched ignoring case.
// A wrong invocation prints usage to errOut; every failure is returned.
func Execute(ctx context.Context, args []string, setup Setup, out, errOut io.Writer) error {
	// cobra falls back to os.Args when given nil
	normalized := make([]string, len(args))
	copy(normalized, args)
	if len(normalized) > 0 {
		normalized[0] = strings.ToLower(normalized[0])
	}

	root := NewRootCmd(setup)
	root.SetArgs(normalized)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil && IsUsageError(err) {
		if cmd == nil || cmd.Hidden {
			cmd = root
		}
		fmt.Fprintf(errOut, "Error: %s\n\n%s", err, cmd.UsageString())
	}
	return err
}

func NewRootCmd(setup Setup) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "disburse",
		Short:         "Report balances of the team address book or send it tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unknown command %q", args[0])}
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return usageError{fmt.Errorf("missing command")}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	// only check and send are commands; help is reached through --help
	cmd.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return usageError{fmt.Errorf("unknown command %q", "help")}
		},
	})
	cmd.AddCommand(checkCmd(setup), sendCmd(setup))
	return cmd
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// withRuntime runs setup, then fn, then releases the runtime.
func withRuntime(ctx context.Context, setup Setup, fn func(*Runtime) error) (err error) {
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	if rt.Close != nil {
		defer func() {
			if cerr := rt.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}
	return fn(rt)
}
