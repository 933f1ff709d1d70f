package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReservationCmd(client func() *adminClient) *cobra.Command {
	c := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"res"},
		Short:   "Manage the system-wide exclusive-access reservation window",
	}
	c.AddCommand(
		newReservationListCmd(client),
		newReservationCreateCmd(client),
		newReservationApproveCmd(client),
		newReservationRejectCmd(client),
		newReservationCancelCmd(client),
		newReservationForceActivateCmd(client),
		newReservationForceDeactivateCmd(client),
		newReservationDeleteCmd(client),
	)
	return c
}

func newReservationListCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []map[string]any
			if err := client().do("GET", "/admin/reservations", nil, &out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			cmd.Println(string(b))
			return nil
		},
	}
}

func newReservationCreateCmd(client func() *adminClient) *cobra.Command {
	var userID, reason, start, end string
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a pending reservation window for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			startAt, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("--start must be RFC3339: %w", err)
			}
			endAt, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("--end must be RFC3339: %w", err)
			}
			req := map[string]any{
				"user_id":  userID,
				"start_at": startAt,
				"end_at":   endAt,
				"reason":   reason,
			}
			var out map[string]any
			if err := client().do("POST", "/admin/reservations", req, &out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			cmd.Println(string(b))
			return nil
		},
	}
	c.Flags().StringVar(&userID, "user", "", "user id the reservation is for")
	c.Flags().StringVar(&start, "start", "", "window start, RFC3339")
	c.Flags().StringVar(&end, "end", "", "window end, RFC3339")
	c.Flags().StringVar(&reason, "reason", "", "free-text justification")
	c.MarkFlagRequired("user")
	c.MarkFlagRequired("start")
	c.MarkFlagRequired("end")
	return c
}

func newReservationApproveCmd(client func() *adminClient) *cobra.Command {
	var approvedBy string
	c := &cobra.Command{
		Use:   "approve <reservation-id>",
		Short: "Approve a pending reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/reservations/"+args[0]+"/approve", map[string]any{
				"approved_by": approvedBy,
			}, nil)
		},
	}
	c.Flags().StringVar(&approvedBy, "approved-by", "", "administrator identifier")
	return c
}

func newReservationRejectCmd(client func() *adminClient) *cobra.Command {
	var adminNote string
	c := &cobra.Command{
		Use:   "reject <reservation-id>",
		Short: "Reject a pending reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/reservations/"+args[0]+"/reject", map[string]any{
				"admin_note": adminNote,
			}, nil)
		},
	}
	c.Flags().StringVar(&adminNote, "note", "", "reason for rejecting")
	return c
}

func newReservationCancelCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <reservation-id>",
		Short: "Cancel a pending or approved reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/reservations/"+args[0]+"/cancel", nil, nil)
		},
	}
}

func newReservationForceActivateCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "force-activate <reservation-id>",
		Short: "Activate an approved reservation immediately, without waiting for its start time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/reservations/"+args[0]+"/force-activate", nil, nil)
		},
	}
}

func newReservationForceDeactivateCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "force-deactivate <reservation-id>",
		Short: "End an active reservation immediately, without waiting for its end time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("POST", "/admin/reservations/"+args[0]+"/force-deactivate", nil, nil)
		},
	}
}

func newReservationDeleteCmd(client func() *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <reservation-id>",
		Short: "Delete a reservation row outright",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do("DELETE", "/admin/reservations/"+args[0], nil, nil)
		},
	}
}
