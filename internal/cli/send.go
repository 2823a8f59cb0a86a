package cli

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

type sendOptions struct {
	title    string
	body     string
	data     []string
	imageURL string
	icon     string
	sound    string
	dryRun   bool
}

func newSendCmd(global *globalOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send <all|user|topic> [token|topic]",
		Short: "Send a notification",
		Long: "Send a notification to every device, to one device token or to a topic.\n" +
			"With --dry-run the provider only validates the message and the attempt is recorded as a test.",
		Example: "  pushctl send topic limpeza --title 'Nova tarefa' --body 'Limpeza da cozinha' --data count=5",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args)
			if err != nil {
				return err
			}
			fields, err := opts.fields()
			if err != nil {
				return err
			}

			client := newAPIClient(global)
			var resp usecase.NotificationResponse
			switch {
			case opts.dryRun:
				err = client.post(cmd.Context(), "/send-test", usecase.SendRequest{
					Notification: fields,
					TargetType:   target.Type,
					TargetValue:  target.Value,
				}, &resp)
			case target.Type == push.TargetSingle:
				err = client.post(cmd.Context(), "/send-user/"+url.PathEscape(target.Value), fields, &resp)
			case target.Type == push.TargetTopic:
				err = client.post(cmd.Context(), "/send-topic/"+url.PathEscape(target.Value), fields, &resp)
			default:
				err = client.post(cmd.Context(), "/send-all", fields, &resp)
			}
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("notification not delivered: %s", resp.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "notification title (required)")
	cmd.Flags().StringVar(&opts.body, "body", "", "notification body (required)")
	cmd.Flags().StringArrayVar(&opts.data, "data", nil, "data entry as key=value; numbers and true/false keep their type (repeatable)")
	cmd.Flags().StringVar(&opts.imageURL, "image", "", "image URL")
	cmd.Flags().StringVar(&opts.icon, "icon", "", "Android icon resource")
	cmd.Flags().StringVar(&opts.sound, "sound", "", "sound name (defaults to the platform default)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate with the provider without delivering")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func parseTarget(args []string) (push.Target, error) {
	value := ""
	if len(args) > 1 {
		value = args[1]
	}
	var target push.Target
	switch args[0] {
	case "all":
		if value != "" {
			return push.Target{}, fmt.Errorf("send all takes no further argument")
		}
		target = push.AllTarget()
	case "user", string(push.TargetSingle):
		target = push.SingleTarget(value)
	case string(push.TargetTopic):
		target = push.TopicTarget(value)
	default:
		return push.Target{}, fmt.Errorf("unknown target %q: want all, user or topic", args[0])
	}
	return target, target.Validate()
}

func (o *sendOptions) fields() (usecase.NotificationFields, error) {
	fields := usecase.NotificationFields{
		Title:    o.title,
		Body:     o.body,
		ImageURL: o.imageURL,
		Icon:     o.icon,
		Sound:    o.sound,
	}
	if len(o.data) > 0 {
		fields.Data = make(map[string]push.DataValue, len(o.data))
		for _, entry := range o.data {
			key, raw, ok := strings.Cut(entry, "=")
			if !ok || key == "" {
				return fields, fmt.Errorf("invalid --data %q: want key=value", entry)
			}
			fields.Data[key] = parseDataValue(raw)
		}
	}
	return fields, fields.Validate()
}

// parseDataValue keeps booleans and numbers typed; anything else is a string.
// A number must render back exactly as typed, so "007" and "1e3" stay strings.
func parseDataValue(raw string) push.DataValue {
	if raw == "true" || raw == "false" {
		return push.BoolValue(raw == "true")
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) && strconv.FormatFloat(n, 'f', -1, 64) == raw {
		return push.NumberValue(n)
	}
	return push.StringValue(raw)
}
