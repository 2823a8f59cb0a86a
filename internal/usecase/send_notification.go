// --- File: internal/usecase/send_notification.go ---
// Package usecase holds the application operations exposed to the HTTP API,
// the ingestion pipeline and the admin CLI.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// SendNotification turns request fields into a notification and hands it to
// the dispatcher. Provider failures come back as unsuccessful responses;
// only invalid input is returned as an error.
type SendNotification struct {
	dispatcher push.Dispatcher
	logger     *slog.Logger
}

func NewSendNotification(dispatcher push.Dispatcher, logger *slog.Logger) *SendNotification {
	return &SendNotification{
		dispatcher: dispatcher,
		logger:     logger.With("component", "SendNotification"),
	}
}

// Execute sends to whatever target the request names.
func (uc *SendNotification) Execute(ctx context.Context, req SendRequest) (NotificationResponse, error) {
	if err := req.Validate(); err != nil {
		return NotificationResponse{}, err
	}
	n := req.Notification.notification()
	result, err := uc.dispatcher.Send(ctx, n, req.Target())
	if err != nil {
		return NotificationResponse{}, err
	}
	uc.logOutcome(n, result)
	return newNotificationResponse(result), nil
}

func (uc *SendNotification) SendToAll(ctx context.Context, fields NotificationFields) (NotificationResponse, error) {
	if err := fields.Validate(); err != nil {
		return NotificationResponse{}, err
	}
	n := fields.notification()
	result := uc.dispatcher.SendToAll(ctx, n)
	uc.logOutcome(n, result)
	return newNotificationResponse(result), nil
}

func (uc *SendNotification) SendToUser(ctx context.Context, fields NotificationFields, token string) (NotificationResponse, error) {
	if token == "" {
		return NotificationResponse{}, fmt.Errorf("%w: token is required", push.ErrValidation)
	}
	if err := fields.Validate(); err != nil {
		return NotificationResponse{}, err
	}
	n := fields.notification()
	result := uc.dispatcher.SendToUser(ctx, n, token)
	uc.logOutcome(n, result)
	return newNotificationResponse(result), nil
}

func (uc *SendNotification) SendToTopic(ctx context.Context, fields NotificationFields, topic string) (NotificationResponse, error) {
	if topic == "" {
		return NotificationResponse{}, fmt.Errorf("%w: topic is required", push.ErrValidation)
	}
	if err := fields.Validate(); err != nil {
		return NotificationResponse{}, err
	}
	n := fields.notification()
	result := uc.dispatcher.SendToTopic(ctx, n, topic)
	uc.logOutcome(n, result)
	return newNotificationResponse(result), nil
}

// SendTest validates the request against the provider without delivering it.
// The attempt is recorded as a test notification.
func (uc *SendNotification) SendTest(ctx context.Context, req SendRequest) (NotificationResponse, error) {
	if err := req.Validate(); err != nil {
		return NotificationResponse{}, err
	}
	n := req.Notification.notification()
	result, err := uc.dispatcher.SendTest(ctx, n, req.Target())
	if err != nil {
		return NotificationResponse{}, err
	}
	uc.logOutcome(n, result)
	return newNotificationResponse(result), nil
}

func (uc *SendNotification) logOutcome(n push.Notification, result push.SendResult) {
	if result.Success {
		uc.logger.Debug("Notification sent", "notification_id", n.ID, "target_type", result.Target.Type)
		return
	}
	uc.logger.Warn("Notification not delivered", "notification_id", n.ID, "target_type", result.Target.Type, "error", result.Error)
}
