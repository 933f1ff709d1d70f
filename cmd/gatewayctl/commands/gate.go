package commands

import "github.com/spf13/cobra"

func newGateCmd(client func() *adminClient) *cobra.Command {
	c := &cobra.Command{
		Use:   "gate",
		Short: "Register or unregister a model's concurrency limit",
	}
	c.AddCommand(newGateRegisterCmd(client), newGateUnregisterCmd(client))
	return c
}

func newGateRegisterCmd(client func() *adminClient) *cobra.Command {
	var modelID string
	var maxSlots int
	c := &cobra.Command{
		Use:   "register",
		Short: "Bound a model's concurrency to max-slots, typically run right after its backend instance starts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/gate/register", map[string]any{
				"model_id":  modelID,
				"max_slots": maxSlots,
			}, nil)
		},
	}
	c.Flags().StringVar(&modelID, "model", "", "model id to register")
	c.Flags().IntVar(&maxSlots, "max-slots", 0, "maximum concurrent requests to admit for this model")
	c.MarkFlagRequired("model")
	c.MarkFlagRequired("max-slots")
	return c
}

func newGateUnregisterCmd(client func() *adminClient) *cobra.Command {
	var modelID string
	c := &cobra.Command{
		Use:   "unregister",
		Short: "Remove a model's concurrency limit, typically run right before its backend instance stops",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("DELETE", "/admin/gate/register", map[string]any{
				"model_id": modelID,
			}, nil)
		},
	}
	c.Flags().StringVar(&modelID, "model", "", "model id to unregister")
	c.MarkFlagRequired("model")
	return c
}
