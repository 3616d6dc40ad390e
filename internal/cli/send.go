package cli

import (
	"github.com/spf13/cobra"
)

func sendCmd(setup Setup) *cobra.Command {
	return &cobra.Command{
		Use:   "send <name> <amount>",
		Short: "Send tokens to the one recipient whose name contains <name>",
		Example: "  disburse send alice 12.5\n" +
			"  disburse send \"bob j\" 1",
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, setup, func(rt *Runtime) error {
				rt.Service.Summary(ctx, rt.Recipients)
				_, err := rt.Service.Send(ctx, rt.Recipients, args[0], args[1])
				return err
			})
		},
	}
}
