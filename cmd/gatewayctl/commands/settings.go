package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(client func() *adminClient) *cobra.Command {
	c := &cobra.Command{
		Use:   "settings",
		Short: "View or change the fairness coefficients",
	}
	c.AddCommand(newSettingsGetCmd(client), newSettingsSetCmd(client))
	return c
}

func newSettingsGetCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current fairness coefficients",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := client().do("GET", "/admin/settings", nil, &out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			cmd.Println(string(b))
			return nil
		},
	}
}

func newSettingsSetCmd(client func() *adminClient) *cobra.Command {
	var basePriority, waitWeight, usageWeight, usageScale float64
	var windowMinutes, queueTimeoutSecs int64

	c := &cobra.Command{
		Use:   "set",
		Short: "Patch one or more fairness coefficients",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			if cmd.Flags().Changed("base-priority") {
				patch["fairness_base_priority"] = basePriority
			}
			if cmd.Flags().Changed("wait-weight") {
				patch["fairness_wait_weight"] = waitWeight
			}
			if cmd.Flags().Changed("usage-weight") {
				patch["fairness_usage_weight"] = usageWeight
			}
			if cmd.Flags().Changed("usage-scale") {
				patch["fairness_usage_scale"] = usageScale
			}
			if cmd.Flags().Changed("window-minutes") {
				patch["fairness_window_minutes"] = windowMinutes
			}
			if cmd.Flags().Changed("queue-timeout-secs") {
				patch["queue_timeout_secs"] = queueTimeoutSecs
			}
			if len(patch) == 0 {
				return fmt.Errorf("no fields given, pass at least one flag")
			}

			var out map[string]any
			if err := client().do("PUT", "/admin/settings", patch, &out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			cmd.Println(string(b))
			return nil
		},
	}
	c.Flags().Float64Var(&basePriority, "base-priority", 0, "flat priority offset every request starts with")
	c.Flags().Float64Var(&waitWeight, "wait-weight", 0, "priority gained per second waited")
	c.Flags().Float64Var(&usageWeight, "usage-weight", 0, "priority penalty weight for recent usage")
	c.Flags().Float64Var(&usageScale, "usage-scale", 0, "token count that normalizes the usage penalty")
	c.Flags().Int64Var(&windowMinutes, "window-minutes", 0, "rolling window, in minutes, recent usage is measured over")
	c.Flags().Int64Var(&queueTimeoutSecs, "queue-timeout-secs", 0, "seconds a queued request waits before a 429 Retry-After")
	return c
}
