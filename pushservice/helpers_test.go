// --- File: pushservice/helpers_test.go ---
package pushservice_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-service/internal/platform/fcm"
	"github.com/tinywideclouds/go-push-service/internal/storage/memory"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
	"github.com/tinywideclouds/go-push-service/pushservice"
	"github.com/tinywideclouds/go-push-service/pushservice/config"
)

// fakeMessaging records every message handed to the provider.
type fakeMessaging struct {
	mu       sync.Mutex
	sent     []*messaging.Message
	failSend bool
}

func (f *fakeMessaging) Send(_ context.Context, msg *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.failSend {
		return "", errors.New("provider unavailable")
	}
	return "projects/test/messages/1", nil
}

func (f *fakeMessaging) SendDryRun(ctx context.Context, msg *messaging.Message) (string, error) {
	return f.Send(ctx, msg)
}

func (f *fakeMessaging) SubscribeToTopic(_ context.Context, tokens []string, _ string) (*messaging.TopicManagementResponse, error) {
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (f *fakeMessaging) UnsubscribeFromTopic(_ context.Context, tokens []string, _ string) (*messaging.TopicManagementResponse, error) {
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (f *fakeMessaging) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMessaging) Last() *messaging.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

type testService struct {
	*pushservice.Wrapper
	client *fakeMessaging
	ledger *memory.Ledger
}

func newTestService(t *testing.T, cfg *config.Config, consumer messagepipeline.MessageConsumer) *testService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &fakeMessaging{}
	ledger := memory.NewLedger()
	dispatcher := fcm.NewDispatcher(client, ledger, logger)

	svc, err := pushservice.New(
		cfg,
		consumer,
		usecase.NewSendNotification(dispatcher, logger),
		usecase.NewTopicManagement(dispatcher, logger),
		ledger,
		func(h http.Handler) http.Handler { return h }, // No-op Auth
		logger,
	)
	require.NoError(t, err)
	return &testService{Wrapper: svc, client: client, ledger: ledger}
}
