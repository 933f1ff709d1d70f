package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newModelCmd(client func() *adminClient) *cobra.Command {
	c := &cobra.Command{
		Use:   "model",
		Short: "Inspect and register loaded models",
	}
	c.AddCommand(newModelListCmd(client), newModelIngestCmd(client))
	return c
}

func newModelListCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List currently loaded models",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := client().do("GET", "/v1/models", nil, &out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			cmd.Println(string(b))
			return nil
		},
	}
}

func newModelIngestCmd(client func() *adminClient) *cobra.Command {
	var modelID, path string
	c := &cobra.Command{
		Use:   "ingest",
		Short: "Parse a GGUF file's header and record its architecture metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/models/ingest", map[string]any{
				"model_id": modelID,
				"path":     path,
			}, nil)
		},
	}
	c.Flags().StringVar(&modelID, "model", "", "model id to update")
	c.Flags().StringVar(&path, "path", "", "path to the GGUF file, readable by the gatewayd process")
	c.MarkFlagRequired("model")
	c.MarkFlagRequired("path")
	return c
}
