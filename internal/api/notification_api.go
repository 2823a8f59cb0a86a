// --- File: internal/api/notification_api.go ---
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-push-service/internal/usecase"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// Sender is the send use case as seen by the HTTP layer.
type Sender interface {
	Execute(ctx context.Context, req usecase.SendRequest) (usecase.NotificationResponse, error)
	SendToAll(ctx context.Context, fields usecase.NotificationFields) (usecase.NotificationResponse, error)
	SendToUser(ctx context.Context, fields usecase.NotificationFields, token string) (usecase.NotificationResponse, error)
	SendToTopic(ctx context.Context, fields usecase.NotificationFields, topic string) (usecase.NotificationResponse, error)
	SendTest(ctx context.Context, req usecase.SendRequest) (usecase.NotificationResponse, error)
}

// TopicManager is the topic management use case as seen by the HTTP layer.
type TopicManager interface {
	Subscribe(ctx context.Context, token, topic string) usecase.TopicResponse
	Unsubscribe(ctx context.Context, token, topic string) usecase.TopicResponse
}

type NotificationAPI struct {
	Sender Sender
	Topics TopicManager
	Logger *slog.Logger
}

func NewNotificationAPI(sender Sender, topics TopicManager, logger *slog.Logger) *NotificationAPI {
	return &NotificationAPI{
		Sender: sender,
		Topics: topics,
		Logger: logger.With("component", "NotificationAPI"),
	}
}

// --- Sends ---

func (api *NotificationAPI) Send(w http.ResponseWriter, r *http.Request) {
	var req usecase.SendRequest
	if !api.decode(w, r, &req) {
		return
	}
	resp, err := api.Sender.Execute(r.Context(), req)
	api.respond(w, r, resp, err)
}

func (api *NotificationAPI) SendToAll(w http.ResponseWriter, r *http.Request) {
	var fields usecase.NotificationFields
	if !api.decode(w, r, &fields) {
		return
	}
	resp, err := api.Sender.SendToAll(r.Context(), fields)
	api.respond(w, r, resp, err)
}

func (api *NotificationAPI) SendToUser(w http.ResponseWriter, r *http.Request) {
	var fields usecase.NotificationFields
	if !api.decode(w, r, &fields) {
		return
	}
	resp, err := api.Sender.SendToUser(r.Context(), fields, r.PathValue("token"))
	api.respond(w, r, resp, err)
}

func (api *NotificationAPI) SendToTopic(w http.ResponseWriter, r *http.Request) {
	var fields usecase.NotificationFields
	if !api.decode(w, r, &fields) {
		return
	}
	resp, err := api.Sender.SendToTopic(r.Context(), fields, r.PathValue("topic"))
	api.respond(w, r, resp, err)
}

// SendTest runs a provider dry run for the same body as Send.
func (api *NotificationAPI) SendTest(w http.ResponseWriter, r *http.Request) {
	var req usecase.SendRequest
	if !api.decode(w, r, &req) {
		return
	}
	resp, err := api.Sender.SendTest(r.Context(), req)
	api.respond(w, r, resp, err)
}

// --- Topics ---

func (api *NotificationAPI) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req usecase.TopicRequest
	if !api.decodeTopic(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, api.Topics.Subscribe(r.Context(), req.Token, req.Topic))
}

func (api *NotificationAPI) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req usecase.TopicRequest
	if !api.decodeTopic(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, api.Topics.Unsubscribe(r.Context(), req.Token, req.Topic))
}

func (api *NotificationAPI) decodeTopic(w http.ResponseWriter, r *http.Request, req *usecase.TopicRequest) bool {
	if !api.decode(w, r, req) {
		return false
	}
	if err := req.Validate(); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// --- Helpers ---

func (api *NotificationAPI) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		api.Logger.Warn("Request body rejected", "path", r.URL.Path, "err", err)
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// respond writes a send outcome. A failed delivery is still a 200: the body
// carries success=false and the provider's error.
func (api *NotificationAPI) respond(w http.ResponseWriter, r *http.Request, resp usecase.NotificationResponse, err error) {
	if err != nil {
		if errors.Is(err, push.ErrValidation) {
			response.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.Logger.Error("Send failed", "path", r.URL.Path, "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "send failed")
		return
	}
	if caller, ok := middleware.GetUserHandleFromContext(r.Context()); ok {
		api.Logger.Info("Send requested", "caller", caller, "target_type", resp.Target.Type, "success", resp.Success)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
