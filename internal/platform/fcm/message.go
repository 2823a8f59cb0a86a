package fcm

import (
	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// Platform policy applied to every message. Not configurable per call.
const (
	AndroidPriority    = "high"
	AndroidClickAction = "FLUTTER_NOTIFICATION_CLICK"
	DefaultSound       = "default"
	IOSBadge           = 1
)

// BuildMessage converts a notification and its resolved target into an FCM
// message. It is a pure function of its inputs.
func BuildMessage(n push.Notification, target push.Target) *messaging.Message {
	sound := n.Sound
	if sound == "" {
		sound = DefaultSound
	}
	badge := IOSBadge

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title:    n.Title,
			Body:     n.Body,
			ImageURL: n.ImageURL,
		},
		Data: n.StringData(),
		Android: &messaging.AndroidConfig{
			Priority: AndroidPriority,
			Notification: &messaging.AndroidNotification{
				Icon:        n.Icon,
				Sound:       sound,
				ClickAction: AndroidClickAction,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: sound,
					Badge: &badge,
				},
			},
		},
	}

	switch target.Type {
	case push.TargetAll:
		msg.Topic = push.BroadcastTopic
	case push.TargetSingle:
		msg.Token = target.Value
	case push.TargetTopic:
		msg.Topic = target.Value
	}
	return msg
}
