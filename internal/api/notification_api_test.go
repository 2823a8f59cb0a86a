package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-push-service/internal/api"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// --- Mocks ---
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Execute(ctx context.Context, req usecase.SendRequest) (usecase.NotificationResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(usecase.NotificationResponse), args.Error(1)
}
func (m *MockSender) SendToAll(ctx context.Context, f usecase.NotificationFields) (usecase.NotificationResponse, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(usecase.NotificationResponse), args.Error(1)
}
func (m *MockSender) SendToUser(ctx context.Context, f usecase.NotificationFields, token string) (usecase.NotificationResponse, error) {
	args := m.Called(ctx, f, token)
	return args.Get(0).(usecase.NotificationResponse), args.Error(1)
}
func (m *MockSender) SendToTopic(ctx context.Context, f usecase.NotificationFields, topic string) (usecase.NotificationResponse, error) {
	args := m.Called(ctx, f, topic)
	return args.Get(0).(usecase.NotificationResponse), args.Error(1)
}
func (m *MockSender) SendTest(ctx context.Context, req usecase.SendRequest) (usecase.NotificationResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(usecase.NotificationResponse), args.Error(1)
}

type MockTopics struct {
	mock.Mock
}

func (m *MockTopics) Subscribe(ctx context.Context, token, topic string) usecase.TopicResponse {
	return m.Called(ctx, token, topic).Get(0).(usecase.TopicResponse)
}
func (m *MockTopics) Unsubscribe(ctx context.Context, token, topic string) usecase.TopicResponse {
	return m.Called(ctx, token, topic).Get(0).(usecase.TopicResponse)
}

// --- Setup ---
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupAPI(t *testing.T) (*http.ServeMux, *MockSender, *MockTopics) {
	t.Helper()
	sender := new(MockSender)
	topics := new(MockTopics)
	handler := api.NewNotificationAPI(sender, topics, newTestLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", handler.Send)
	mux.HandleFunc("POST /send-all", handler.SendToAll)
	mux.HandleFunc("POST /send-user/{token}", handler.SendToUser)
	mux.HandleFunc("POST /send-topic/{topic}", handler.SendToTopic)
	mux.HandleFunc("POST /send-test", handler.SendTest)
	mux.HandleFunc("POST /topics/subscribe", handler.Subscribe)
	mux.HandleFunc("POST /topics/unsubscribe", handler.Unsubscribe)
	return mux, sender, topics
}

func post(t *testing.T, mux http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "urn:test:user:admin"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

var notificationBody = map[string]any{
	"title": "Nova tarefa",
	"body":  "Limpeza da cozinha",
	"data":  map[string]any{"count": 5, "active": true},
}

// --- Tests ---

func TestNotificationAPI_Send(t *testing.T) {
	mux, sender, _ := setupAPI(t)

	t.Run("Success", func(t *testing.T) {
		target := push.TopicTarget("limpeza")
		sender.On("Execute", mock.Anything, mock.MatchedBy(func(req usecase.SendRequest) bool {
			return req.TargetType == push.TargetTopic && req.TargetValue == "limpeza" &&
				req.Notification.Title == "Nova tarefa" && req.Notification.Data["count"].String() == "5"
		})).Return(usecase.NotificationResponse{Success: true, MessageID: "msg-123", Target: target}, nil).Once()

		w := post(t, mux, "/send", map[string]any{
			"notification": notificationBody,
			"targetType":   "topic",
			"targetValue":  "limpeza",
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"messageId":"msg-123","target":{"type":"topic","value":"limpeza"}}`, w.Body.String())
	})

	t.Run("Provider failure is still 200", func(t *testing.T) {
		sender.On("Execute", mock.Anything, mock.MatchedBy(func(req usecase.SendRequest) bool {
			return req.TargetType == push.TargetAll
		})).Return(usecase.NotificationResponse{Error: "quota exceeded", Target: push.AllTarget()}, nil).Once()

		w := post(t, mux, "/send", map[string]any{"notification": notificationBody, "targetType": "all"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"quota exceeded","target":{"type":"all"}}`, w.Body.String())
	})

	t.Run("Validation error is 400", func(t *testing.T) {
		sender.On("Execute", mock.Anything, mock.MatchedBy(func(req usecase.SendRequest) bool {
			return req.TargetType == push.TargetSingle
		})).Return(usecase.NotificationResponse{}, push.ErrInvalidTarget).Once()

		w := post(t, mux, "/send", map[string]any{"notification": notificationBody, "targetType": "single"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Non-scalar data is rejected before the use case", func(t *testing.T) {
		w := post(t, mux, "/send", map[string]any{
			"notification": map[string]any{"title": "t", "body": "b", "data": map[string]any{"nested": []int{1}}},
			"targetType":   "all",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed JSON is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/send", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	sender.AssertExpectations(t)
}

func TestNotificationAPI_DirectSends(t *testing.T) {
	mux, sender, _ := setupAPI(t)
	ok := func(target push.Target) usecase.NotificationResponse {
		return usecase.NotificationResponse{Success: true, MessageID: "msg-1", Target: target}
	}

	t.Run("Send to all", func(t *testing.T) {
		sender.On("SendToAll", mock.Anything, mock.Anything).Return(ok(push.AllTarget()), nil).Once()
		w := post(t, mux, "/send-all", notificationBody)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Send to user takes the token from the path", func(t *testing.T) {
		sender.On("SendToUser", mock.Anything, mock.Anything, "tok1").Return(ok(push.SingleTarget("tok1")), nil).Once()
		w := post(t, mux, "/send-user/tok1", notificationBody)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"value":"tok1"`)
	})

	t.Run("Send to topic takes the topic from the path", func(t *testing.T) {
		sender.On("SendToTopic", mock.Anything, mock.Anything, "limpeza").Return(ok(push.TopicTarget("limpeza")), nil).Once()
		w := post(t, mux, "/send-topic/limpeza", notificationBody)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Send test", func(t *testing.T) {
		sender.On("SendTest", mock.Anything, mock.Anything).Return(ok(push.AllTarget()), nil).Once()
		w := post(t, mux, "/send-test", map[string]any{"notification": notificationBody, "targetType": "all"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unexpected errors are 500", func(t *testing.T) {
		sender.On("SendToAll", mock.Anything, mock.Anything).Return(usecase.NotificationResponse{}, assert.AnError).Once()
		w := post(t, mux, "/send-all", notificationBody)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	sender.AssertExpectations(t)
}

func TestNotificationAPI_Topics(t *testing.T) {
	mux, _, topics := setupAPI(t)

	t.Run("Subscribe", func(t *testing.T) {
		topics.On("Subscribe", mock.Anything, "tok1", "urgente").Return(usecase.TopicResponse{Success: true}).Once()
		w := post(t, mux, "/topics/subscribe", map[string]string{"token": "tok1", "topic": "urgente"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("Unsubscribe failure keeps 200", func(t *testing.T) {
		topics.On("Unsubscribe", mock.Anything, "tok1", "urgente").
			Return(usecase.TopicResponse{Error: "failed to unsubscribe from topic"}).Once()
		w := post(t, mux, "/topics/unsubscribe", map[string]string{"token": "tok1", "topic": "urgente"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"failed to unsubscribe from topic"}`, w.Body.String())
	})

	t.Run("Missing topic is 400", func(t *testing.T) {
		w := post(t, mux, "/topics/subscribe", map[string]string{"token": "tok1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		topics.AssertNotCalled(t, "Subscribe", mock.Anything, "tok1", "")
	})
}
