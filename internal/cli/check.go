package cli

import (
	"github.com/spf13/cobra"
)

func checkCmd(setup Setup) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Print native and token balances of the wallet and every recipient",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, setup, func(rt *Runtime) error {
				rt.Service.Summary(ctx, rt.Recipients)
				_, err := rt.Service.Check(ctx, rt.Recipients)
				return err
			})
		},
	}
}
