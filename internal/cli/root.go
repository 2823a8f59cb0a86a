// Package cli implements pushctl, the admin command line for the push service.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

var (
	version = "dev"
	commit  = "none"
)

type globalOptions struct {
	server string
	token  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "pushctl",
		Short:         "Send and inspect push notifications",
		Long:          "pushctl talks to a running push service: it sends notifications, manages topic subscriptions and reads the send history.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("PUSHCTL_SERVER", defaultServer), "push service base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("PUSHCTL_TOKEN"), "bearer token for authenticated deployments")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newTopicCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("pushctl %s (%s)\n", version, commit)
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
