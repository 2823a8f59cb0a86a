// --- File: internal/platform/fcm/fcmdispatcher.go ---
package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it; tests substitute a mock.
type MessagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, msg *messaging.Message) (string, error)
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}

var _ push.Dispatcher = (*Dispatcher)(nil)

// Dispatcher resolves targets, builds FCM messages and records each attempt
// in the history ledger. Every send is exactly one provider call.
type Dispatcher struct {
	client  MessagingClient
	history push.HistoryStore
	logger  *slog.Logger
}

func NewDispatcher(client MessagingClient, history push.HistoryStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client:  client,
		history: history,
		logger:  logger.With("component", "FCMDispatcher"),
	}
}

// Send validates the target before touching the provider, then routes to the
// matching SendTo* method.
func (d *Dispatcher) Send(ctx context.Context, n push.Notification, target push.Target) (push.SendResult, error) {
	if err := target.Validate(); err != nil {
		return push.SendResult{}, err
	}
	switch target.Type {
	case push.TargetSingle:
		return d.SendToUser(ctx, n, target.Value), nil
	case push.TargetTopic:
		return d.SendToTopic(ctx, n, target.Value), nil
	default:
		return d.SendToAll(ctx, n), nil
	}
}

// SendToAll publishes to the reserved broadcast topic. Devices are expected to
// be subscribed to it by the client apps.
func (d *Dispatcher) SendToAll(ctx context.Context, n push.Notification) push.SendResult {
	result := d.deliver(ctx, n, push.AllTarget())
	d.record(ctx, n, result, false)
	return result
}

func (d *Dispatcher) SendToUser(ctx context.Context, n push.Notification, token string) push.SendResult {
	result := d.deliver(ctx, n, push.SingleTarget(token))
	d.record(ctx, n, result, false)
	return result
}

// SendToTopic does not write a history record, unlike SendToAll and
// SendToUser.
// TODO(history): confirm with the app team whether topic sends should be recorded.
func (d *Dispatcher) SendToTopic(ctx context.Context, n push.Notification, topic string) push.SendResult {
	return d.deliver(ctx, n, push.TopicTarget(topic))
}

// SendTest asks FCM to validate the message without delivering it and records
// the attempt with TestMode set, whatever the target type.
func (d *Dispatcher) SendTest(ctx context.Context, n push.Notification, target push.Target) (push.SendResult, error) {
	if err := target.Validate(); err != nil {
		return push.SendResult{}, err
	}
	msg := BuildMessage(n, target)

	var result push.SendResult
	messageID, err := d.client.SendDryRun(ctx, msg)
	if err != nil {
		d.logger.Error("FCM dry run failed", "target_type", target.Type, "err", err)
		result = push.Failed(target, err)
	} else {
		d.logger.Info("FCM dry run accepted", "target_type", target.Type, "message_id", messageID)
		result = push.Succeeded(target, messageID)
	}
	d.record(ctx, n, result, true)
	return result, nil
}

func (d *Dispatcher) SubscribeToTopic(ctx context.Context, token, topic string) bool {
	d.logger.Info("Subscribing device to topic", "topic", topic)
	resp, err := d.client.SubscribeToTopic(ctx, []string{token}, topic)
	if err := topicError(resp, err); err != nil {
		d.logger.Error("Topic subscribe failed", "topic", topic, "err", err)
		return false
	}
	return true
}

func (d *Dispatcher) UnsubscribeFromTopic(ctx context.Context, token, topic string) bool {
	d.logger.Info("Unsubscribing device from topic", "topic", topic)
	resp, err := d.client.UnsubscribeFromTopic(ctx, []string{token}, topic)
	if err := topicError(resp, err); err != nil {
		d.logger.Error("Topic unsubscribe failed", "topic", topic, "err", err)
		return false
	}
	return true
}

// deliver performs the provider call and normalises the outcome.
func (d *Dispatcher) deliver(ctx context.Context, n push.Notification, target push.Target) push.SendResult {
	msg := BuildMessage(n, target)
	log := d.logger.With("notification_id", n.ID, "target_type", target.Type)

	messageID, err := d.client.Send(ctx, msg)
	if err != nil {
		log.Error("FCM send failed", "err", err)
		return push.Failed(target, err)
	}
	log.Info("FCM send succeeded", "message_id", messageID)
	return push.Succeeded(target, messageID)
}

// record is best-effort: a failed history write is logged and never changes
// the result handed back to the caller. It survives request cancellation.
func (d *Dispatcher) record(ctx context.Context, n push.Notification, result push.SendResult, testMode bool) {
	entry := push.NewHistoryRecord(n, result, testMode)
	if err := d.history.Save(context.WithoutCancel(ctx), entry); err != nil {
		d.logger.Error("Failed to save notification history",
			"notification_id", n.ID,
			"record_id", entry.ID,
			"err", err,
		)
	}
}

// topicError folds per-token failures from a topic management response into
// an error, since the SDK only returns transport failures as errors.
func topicError(resp *messaging.TopicManagementResponse, err error) error {
	if err != nil {
		return err
	}
	if resp != nil && resp.FailureCount > 0 {
		reason := "unknown"
		if len(resp.Errors) > 0 && resp.Errors[0] != nil {
			reason = resp.Errors[0].Reason
		}
		return fmt.Errorf("provider rejected %d token(s): %s", resp.FailureCount, reason)
	}
	return nil
}
