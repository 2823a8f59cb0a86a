package push

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks request input that is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTarget is returned when a single or topic target carries no value.
	ErrInvalidTarget = fmt.Errorf("%w: invalid target", ErrValidation)
	// ErrUnsupportedTarget is returned for an unrecognised target type.
	ErrUnsupportedTarget = fmt.Errorf("%w: unsupported target", ErrValidation)
)

// BroadcastTopic is the reserved FCM topic that every device subscribes to.
// A send to TargetAll is a send to this topic.
const BroadcastTopic = "all"

// TargetType is the addressing mode of a notification.
type TargetType string

const (
	TargetAll    TargetType = "all"
	TargetSingle TargetType = "single"
	TargetTopic  TargetType = "topic"
)

// TargetTypes lists every supported addressing mode.
var TargetTypes = []TargetType{TargetAll, TargetSingle, TargetTopic}

// ParseTargetType validates a raw target type string.
func ParseTargetType(s string) (TargetType, error) {
	t := TargetType(s)
	switch t {
	case TargetAll, TargetSingle, TargetTopic:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, s)
}

// Target identifies who receives a notification.
// Value is the device token for TargetSingle and the topic name for TargetTopic.
type Target struct {
	Type  TargetType `json:"type" firestore:"type"`
	Value string     `json:"value,omitempty" firestore:"value,omitempty"`
}

func AllTarget() Target                { return Target{Type: TargetAll} }
func SingleTarget(token string) Target { return Target{Type: TargetSingle, Value: token} }
func TopicTarget(topic string) Target  { return Target{Type: TargetTopic, Value: topic} }

// Validate checks that the target type is known and that single and topic
// targets carry a value.
func (t Target) Validate() error {
	switch t.Type {
	case TargetAll:
		return nil
	case TargetSingle:
		if t.Value == "" {
			return fmt.Errorf("%w: token is required for a single target", ErrInvalidTarget)
		}
		return nil
	case TargetTopic:
		if t.Value == "" {
			return fmt.Errorf("%w: topic name is required for a topic target", ErrInvalidTarget)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTarget, t.Type)
	}
}
