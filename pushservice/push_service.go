// --- File: pushservice/push_service.go ---
package pushservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-push-service/internal/api"
	"github.com/tinywideclouds/go-push-service/internal/pipeline"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
	"github.com/tinywideclouds/go-push-service/pkg/push"
	"github.com/tinywideclouds/go-push-service/pushservice/config"
)

const apiPrefix = "/api/v1/notifications"

type Wrapper struct {
	*microservice.BaseServer
	pipelineService *messagepipeline.StreamingService[usecase.SendRequest]
	logger          *slog.Logger
}

// New assembles the service. consumer may be nil, in which case requests are
// only accepted over HTTP.
func New(
	cfg *config.Config,
	consumer messagepipeline.MessageConsumer,
	sender api.Sender,
	topics api.TopicManager,
	history push.HistoryStore,
	authMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) (*Wrapper, error) {

	// 1. Base Server
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	// 2. Pipeline (optional)
	var streamingService *messagepipeline.StreamingService[usecase.SendRequest]
	if consumer != nil {
		processor := pipeline.NewProcessor(sender, logger)
		var err error
		streamingService, err = messagepipeline.NewStreamingService(
			messagepipeline.StreamingServiceConfig{NumWorkers: cfg.NumPipelineWorkers},
			consumer,
			pipeline.SendRequestTransformer,
			processor,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create streaming service: %w", err)
		}
	}

	// 3. API
	notificationAPI := api.NewNotificationAPI(sender, topics, logger)
	historyAPI := api.NewHistoryAPI(history, logger)

	// Register Routes
	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)

	handle := func(pattern string, handlerFunc http.HandlerFunc) {
		mux.Handle(pattern, corsMiddleware(authMiddleware(handlerFunc)))
	}

	// Sends
	handle("POST "+apiPrefix+"/send", notificationAPI.Send)
	handle("POST "+apiPrefix+"/send-all", notificationAPI.SendToAll)
	handle("POST "+apiPrefix+"/send-user/{token}", notificationAPI.SendToUser)
	handle("POST "+apiPrefix+"/send-topic/{topic}", notificationAPI.SendToTopic)
	handle("POST "+apiPrefix+"/send-test", notificationAPI.SendTest)

	// Topics
	handle("POST "+apiPrefix+"/topics/subscribe", notificationAPI.Subscribe)
	handle("POST "+apiPrefix+"/topics/unsubscribe", notificationAPI.Unsubscribe)

	// History (read-only)
	handle("GET "+apiPrefix+"/history", historyAPI.List)
	handle("GET "+apiPrefix+"/history/stats", historyAPI.Stats)

	// Global OPTIONS for the API namespace (CORS preflight)
	mux.Handle("OPTIONS /api/v1/", corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	return &Wrapper{
		BaseServer:      baseServer,
		pipelineService: streamingService,
		logger:          logger,
	}, nil
}

func (w *Wrapper) Start(ctx context.Context) error {
	if w.pipelineService != nil {
		w.logger.Info("Ingestion pipeline starting...")
		if err := w.pipelineService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start processing service: %w", err)
		}
	} else {
		w.logger.Info("No subscription configured; serving HTTP only")
	}
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	var finalErr error
	if w.pipelineService != nil {
		if err := w.pipelineService.Stop(ctx); err != nil {
			w.logger.Error("Processing pipeline shutdown failed.", "err", err)
			finalErr = err
		}
	}
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		finalErr = err
	}
	w.logger.Info("Service shutdown complete.")
	return finalErr
}
