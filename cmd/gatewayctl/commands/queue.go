package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newQueueCmd(client func() *adminClient) *cobra.Command {
	var modelID string
	c := &cobra.Command{
		Use:   "queue",
		Short: "Show queue depth and gate occupancy for a model",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := client().do("GET", "/admin/queue?model_id="+modelID, nil, &out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			cmd.Println(string(b))
			return nil
		},
	}
	c.Flags().StringVar(&modelID, "model", "", "model id to inspect")
	c.MarkFlagRequired("model")
	return c
}
