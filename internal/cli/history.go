package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

type historyPage struct {
	Records []push.HistoryRecord `json:"records"`
	Total   *int                 `json:"total,omitempty"`
}

func newHistoryCmd(global *globalOptions) *cobra.Command {
	var (
		limit      int
		offset     int
		targetType string
		testOnly   bool
		from, to   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded send attempts, newest first",
		Long: "List recorded send attempts, newest first. At most one of --type, --test and\n" +
			"--from/--to may be given; without a filter the listing is paged with --limit and --offset.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				query.Set("offset", strconv.Itoa(offset))
			}
			if targetType != "" {
				if _, err := push.ParseTargetType(targetType); err != nil {
					return err
				}
				query.Set("type", targetType)
			}
			if testOnly {
				query.Set("test", "true")
			}
			if from != "" || to != "" {
				for _, ts := range []string{from, to} {
					if _, err := time.Parse(time.RFC3339, ts); err != nil {
						return fmt.Errorf("--from and --to must both be RFC 3339 timestamps: %w", err)
					}
				}
				query.Set("from", from)
				query.Set("to", to)
			}

			var page historyPage
			if err := newAPIClient(global).get(cmd.Context(), "/history", query, &page); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to return (server default when 0)")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip in the unfiltered listing")
	cmd.Flags().StringVar(&targetType, "type", "", "only records for this target type (all, single, topic)")
	cmd.Flags().BoolVar(&testOnly, "test", false, "only dry-run records")
	cmd.Flags().StringVar(&from, "from", "", "range start, RFC 3339, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "range end, RFC 3339, inclusive")
	return cmd
}

func newStatsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate send statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var stats push.Stats
			if err := newAPIClient(global).get(cmd.Context(), "/history/stats", nil, &stats); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}
