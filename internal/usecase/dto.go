// --- File: internal/usecase/dto.go ---
package usecase

import (
	"fmt"

	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// NotificationFields is the caller-supplied content of a notification.
type NotificationFields struct {
	Title    string                    `json:"title"`
	Body     string                    `json:"body"`
	Data     map[string]push.DataValue `json:"data,omitempty"`
	ImageURL string                    `json:"imageUrl,omitempty"`
	Icon     string                    `json:"icon,omitempty"`
	Sound    string                    `json:"sound,omitempty"`
}

// Validate requires a title and a body.
func (f NotificationFields) Validate() error {
	if f.Title == "" {
		return fmt.Errorf("%w: title is required", push.ErrValidation)
	}
	if f.Body == "" {
		return fmt.Errorf("%w: body is required", push.ErrValidation)
	}
	return nil
}

func (f NotificationFields) notification() push.Notification {
	return push.NewNotification(f.Title, f.Body, f.Data, f.ImageURL, f.Icon, f.Sound)
}

// SendRequest addresses a notification by target type and value. It is the
// body of the generic send endpoint and the payload of ingested messages.
type SendRequest struct {
	Notification NotificationFields `json:"notification"`
	TargetType   push.TargetType    `json:"targetType"`
	TargetValue  string             `json:"targetValue,omitempty"`
}

func (r SendRequest) Target() push.Target {
	return push.Target{Type: r.TargetType, Value: r.TargetValue}
}

// Validate checks the content and the target.
func (r SendRequest) Validate() error {
	if err := r.Notification.Validate(); err != nil {
		return err
	}
	return r.Target().Validate()
}

// NotificationResponse is the stable response contract for every send.
type NotificationResponse struct {
	Success   bool        `json:"success"`
	MessageID string      `json:"messageId,omitempty"`
	Error     string      `json:"error,omitempty"`
	Target    push.Target `json:"target"`
}

func newNotificationResponse(result push.SendResult) NotificationResponse {
	return NotificationResponse{
		Success:   result.Success,
		MessageID: result.MessageID,
		Error:     result.Error,
		Target:    result.Target,
	}
}

// TopicRequest is the body of the subscribe and unsubscribe endpoints.
type TopicRequest struct {
	Token string `json:"token"`
	Topic string `json:"topic"`
}

func (r TopicRequest) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("%w: token is required", push.ErrValidation)
	}
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", push.ErrValidation)
	}
	return nil
}

// TopicResponse reports a topic management call. Error is advisory only.
type TopicResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
