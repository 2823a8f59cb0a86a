// --- File: internal/pipeline/transformer.go ---
// Package pipeline turns Pub/Sub messages into sends.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
)

// SendRequestTransformer is a dataflow Transformer that unmarshals and
// validates a raw message payload into a usecase.SendRequest.
//
// Any failure sets skip=true so the StreamingService nacks the message and
// it ends up on the dead-letter topic instead of being redelivered forever.
func SendRequestTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*usecase.SendRequest, bool, error) {
	var req usecase.SendRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, true, fmt.Errorf("failed to unmarshal send request from message %s: %w", msg.ID, err)
	}
	if err := req.Validate(); err != nil {
		return nil, true, fmt.Errorf("invalid send request in message %s: %w", msg.ID, err)
	}
	return &req, false, nil
}
