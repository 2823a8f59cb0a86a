package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-service/internal/cli"
)

// capturedRequest is what the fake server saw.
type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newFakeServer(t *testing.T, status int, reply string) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		captured := capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &captured.Body)
		}
		fs.mu.Lock()
		fs.requests = append(fs.requests, captured)
		fs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) last(t *testing.T) capturedRequest {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NotEmpty(t, fs.requests)
	return fs.requests[len(fs.requests)-1]
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--server", server))
	err := cmd.Execute()
	return buf.String(), err
}

func TestSendCommand(t *testing.T) {
	t.Run("Topic send with typed data", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"success":true,"messageId":"msg-123","target":{"type":"topic","value":"limpeza"}}`)

		out, err := run(t, srv.URL, "send", "topic", "limpeza",
			"--title", "Nova tarefa", "--body", "Limpeza da cozinha",
			"--data", "count=5", "--data", "active=true", "--data", "room=kitchen",
			"--token", "secret")

		require.NoError(t, err)
		assert.Contains(t, out, `"messageId": "msg-123"`)

		req := srv.last(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/v1/notifications/send-topic/limpeza", req.Path)
		assert.Equal(t, "Bearer secret", req.Auth)
		assert.Equal(t, "Nova tarefa", req.Body["title"])
		assert.Equal(t, map[string]any{"count": float64(5), "active": true, "room": "kitchen"}, req.Body["data"])
	})

	t.Run("Data values that do not round-trip as numbers stay strings", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"success":true,"messageId":"m","target":{"type":"all"}}`)

		_, err := run(t, srv.URL, "send", "all", "--title", "t", "--body", "b",
			"--data", "order=007", "--data", "id=1e3", "--data", "ratio=1.5",
			"--data", "neg=-2", "--data", "nan=NaN")

		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"order": "007",
			"id":    "1e3",
			"ratio": 1.5,
			"neg":   float64(-2),
			"nan":   "NaN",
		}, srv.last(t).Body["data"])
	})

	t.Run("User send", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"success":true,"messageId":"m","target":{"type":"single","value":"tok1"}}`)

		_, err := run(t, srv.URL, "send", "user", "tok1", "--title", "t", "--body", "b")

		require.NoError(t, err)
		assert.Equal(t, "/api/v1/notifications/send-user/tok1", srv.last(t).Path)
	})

	t.Run("Dry run goes to send-test with the full request", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"success":true,"messageId":"dry","target":{"type":"all"}}`)

		_, err := run(t, srv.URL, "send", "all", "--title", "t", "--body", "b", "--dry-run")

		require.NoError(t, err)
		req := srv.last(t)
		assert.Equal(t, "/api/v1/notifications/send-test", req.Path)
		assert.Equal(t, "all", req.Body["targetType"])
	})

	t.Run("Undelivered notification exits with an error", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"success":false,"error":"quota exceeded","target":{"type":"all"}}`)

		out, err := run(t, srv.URL, "send", "all", "--title", "t", "--body", "b")

		require.ErrorContains(t, err, "quota exceeded")
		assert.Contains(t, out, `"success": false`)
	})

	t.Run("Missing token is rejected locally", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{}`)

		_, err := run(t, srv.URL, "send", "user", "--title", "t", "--body", "b")

		require.Error(t, err)
		srv.mu.Lock()
		defer srv.mu.Unlock()
		assert.Empty(t, srv.requests)
	})

	t.Run("Server error is surfaced", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusBadRequest, `{"error":"title is required"}`)

		_, err := run(t, srv.URL, "send", "all", "--title", "t", "--body", "b")

		require.ErrorContains(t, err, "400")
	})
}

func TestAPIClient(t *testing.T) {
	t.Run("No token sends no authorization header", func(t *testing.T) {
		t.Setenv("PUSHCTL_TOKEN", "")
		srv := newFakeServer(t, http.StatusOK, `{"success":true}`)

		_, err := run(t, srv.URL+"/", "topic", "subscribe", "tok1", "urgente")

		require.NoError(t, err)
		req := srv.last(t)
		assert.Empty(t, req.Auth)
		assert.Equal(t, "/api/v1/notifications/topics/subscribe", req.Path)
	})

	t.Run("Malformed reply is an error", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"success":`)

		_, err := run(t, srv.URL, "stats")

		assert.Error(t, err)
	})

	t.Run("Server failure carries status and body", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusInternalServerError, `{"error":"ledger unavailable"}`)

		_, err := run(t, srv.URL, "history")

		require.ErrorContains(t, err, "500")
		assert.ErrorContains(t, err, "ledger unavailable")
	})
}

func TestTopicCommand(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{"success":true}`)

	_, err := run(t, srv.URL, "topic", "subscribe", "tok1", "urgente")

	require.NoError(t, err)
	req := srv.last(t)
	assert.Equal(t, "/api/v1/notifications/topics/subscribe", req.Path)
	assert.Equal(t, map[string]any{"token": "tok1", "topic": "urgente"}, req.Body)

	failing := newFakeServer(t, http.StatusOK, `{"success":false,"error":"failed to unsubscribe from topic"}`)
	_, err = run(t, failing.URL, "topic", "unsubscribe", "tok1", "urgente")
	assert.Error(t, err)
}

func TestHistoryCommands(t *testing.T) {
	t.Run("History forwards filters", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"records":[]}`)

		out, err := run(t, srv.URL, "history", "--type", "single", "--limit", "5")

		require.NoError(t, err)
		assert.Contains(t, out, `"records": []`)
		req := srv.last(t)
		assert.Equal(t, "/api/v1/notifications/history", req.Path)
		assert.Equal(t, "limit=5&type=single", req.Query)
	})

	t.Run("History validates timestamps locally", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK, `{"records":[]}`)
		_, err := run(t, srv.URL, "history", "--from", "yesterday", "--to", "2025-03-01T12:00:00Z")
		assert.Error(t, err)
	})

	t.Run("Stats", func(t *testing.T) {
		srv := newFakeServer(t, http.StatusOK,
			`{"totalSent":3,"totalSuccessful":2,"totalFailed":1,"byType":{"all":1,"single":2,"topic":0},"recentActivity":[]}`)

		out, err := run(t, srv.URL, "stats")

		require.NoError(t, err)
		assert.Contains(t, out, `"totalSent": 3`)
		assert.Equal(t, "/api/v1/notifications/history/stats", srv.last(t).Path)
	})
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "pushctl")
}
