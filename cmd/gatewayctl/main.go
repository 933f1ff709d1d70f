// Command gatewayctl is the administrator CLI for a running gatewayd
// instance: settings, reservations, model registration, and queue
// inspection, all driven through the scheduler's own admin HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/fairgate/scheduler/cmd/gatewayctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
