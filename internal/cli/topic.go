package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
)

func newTopicCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage device topic subscriptions",
	}
	cmd.AddCommand(newTopicActionCmd(global, "subscribe", "Subscribe a device token to a topic"))
	cmd.AddCommand(newTopicActionCmd(global, "unsubscribe", "Unsubscribe a device token from a topic"))
	return cmd
}

func newTopicActionCmd(global *globalOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <token> <topic>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp usecase.TopicResponse
			req := usecase.TopicRequest{Token: args[0], Topic: args[1]}
			if err := req.Validate(); err != nil {
				return err
			}
			if err := newAPIClient(global).post(cmd.Context(), "/topics/"+action, req, &resp); err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("%s failed: %s", action, resp.Error)
			}
			return nil
		},
	}
}
