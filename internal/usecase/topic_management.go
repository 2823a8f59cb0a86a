// --- File: internal/usecase/topic_management.go ---
package usecase

import (
	"context"
	"log/slog"

	"github.com/tinywideclouds/go-push-service/pkg/push"
)

const (
	subscribeFailed   = "failed to subscribe to topic"
	unsubscribeFailed = "failed to unsubscribe from topic"
)

// TopicManagement subscribes and unsubscribes device tokens. It never returns
// an error: every outcome is folded into a TopicResponse.
type TopicManagement struct {
	dispatcher push.Dispatcher
	logger     *slog.Logger
}

func NewTopicManagement(dispatcher push.Dispatcher, logger *slog.Logger) *TopicManagement {
	return &TopicManagement{
		dispatcher: dispatcher,
		logger:     logger.With("component", "TopicManagement"),
	}
}

func (uc *TopicManagement) Subscribe(ctx context.Context, token, topic string) TopicResponse {
	if err := (TopicRequest{Token: token, Topic: topic}).Validate(); err != nil {
		return TopicResponse{Success: false, Error: err.Error()}
	}
	if !uc.dispatcher.SubscribeToTopic(ctx, token, topic) {
		return TopicResponse{Success: false, Error: subscribeFailed}
	}
	uc.logger.Debug("Device subscribed", "topic", topic)
	return TopicResponse{Success: true}
}

func (uc *TopicManagement) Unsubscribe(ctx context.Context, token, topic string) TopicResponse {
	if err := (TopicRequest{Token: token, Topic: topic}).Validate(); err != nil {
		return TopicResponse{Success: false, Error: err.Error()}
	}
	if !uc.dispatcher.UnsubscribeFromTopic(ctx, token, topic) {
		return TopicResponse{Success: false, Error: unsubscribeFailed}
	}
	uc.logger.Debug("Device unsubscribed", "topic", topic)
	return TopicResponse{Success: true}
}
