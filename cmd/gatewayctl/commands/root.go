// Package commands implements the gatewayctl subcommand tree, following the
// teacher's cobra composition pattern of one newXxxCmd() per subcommand
// registered onto a single root command.
package commands

import "github.com/spf13/cobra"

// NewRootCmd builds the gatewayctl command tree.
func NewRootCmd() *cobra.Command {
	var addr, token string

	root := &cobra.Command{
		Use:   "gatewayctl",
		Short: "Administer a fair-use inference scheduler",
	}
	root.PersistentFlags().StringVar(&addr, "addr", envOr("SCHEDULER_ADDR", "http://127.0.0.1:8080"), "scheduler admin address")
	root.PersistentFlags().StringVar(&token, "token", envOr("SCHEDULER_TOKEN", ""), "scheduler admin token")

	client := func() *adminClient {
		return newAdminClient(addr, token)
	}

	root.AddCommand(
		newSettingsCmd(client),
		newReservationCmd(client),
		newModelCmd(client),
		newQueueCmd(client),
		newGateCmd(client),
	)
	return root
}
