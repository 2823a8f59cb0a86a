// --- File: internal/pipeline/processor.go ---
package pipeline

import (
	"context"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
)

// Executor is the part of the send use case the pipeline drives.
type Executor interface {
	Execute(ctx context.Context, req usecase.SendRequest) (usecase.NotificationResponse, error)
}

// NewProcessor creates the stage that performs one send per message.
// A provider failure is not retried: it is logged and the message is acked.
// Only an error from Execute itself is returned to the pipeline.
func NewProcessor(
	sender Executor,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[usecase.SendRequest] {

	return func(ctx context.Context, original messagepipeline.Message, request *usecase.SendRequest) error {
		procLogger := logger.With(
			"target_type", request.TargetType,
			"pubsub_msg_id", original.ID,
		)

		resp, err := sender.Execute(ctx, *request)
		if err != nil {
			procLogger.Error("Send request rejected", "err", err)
			return err
		}
		if !resp.Success {
			procLogger.Warn("Notification not delivered; dropping", "error", resp.Error)
			return nil
		}
		procLogger.Info("Notification dispatched", "message_id", resp.MessageID)
		return nil
	}
}
