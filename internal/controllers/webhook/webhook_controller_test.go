//go:generate go tool mockgen -source=webhook_controller.go -destination=webhook_controller_mock_test.go -package=webhook
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DIMO-Network/server-garage/pkg/fibercommon"
	"github.com/DIMO-Network/telegram-webhook/internal/telegram"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWebhookController_HandleUpdate(t *testing.T) {
	t.Parallel()

	t.Run("replies to the chat with the offline notice", func(t *testing.T) {
		controller, mockSender := newWebhookControllerAndMocks(t, 0)
		app, logs := newAppWithLogs(controller)

		mockSender.EXPECT().
			SendMessage(gomock.Any(), telegram.ChatID("42"), DefaultOfflineMessage).
			Return(nil).
			Times(1)

		resp := postUpdate(t, app, `{"message":{"chat":{"id":42}}}`, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		entry := findLogEntry(t, logs, "Message from chat #42")
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "42", entry["chatId"])
	})

	t.Run("string chat id", func(t *testing.T) {
		controller, mockSender := newWebhookControllerAndMocks(t, 0)
		app := newApp(controller, "")

		mockSender.EXPECT().
			SendMessage(gomock.Any(), telegram.ChatID("@channel"), DefaultOfflineMessage).
			Return(nil).
			Times(1)

		resp := postUpdate(t, app, `{"update_id":1,"message":{"message_id":5,"text":"hi","chat":{"id":"@channel"}}}`, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("custom reply text", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockSender := NewMockMessageSender(ctrl)
		controller := NewWebhookController(mockSender, "Back soon", 0)
		app := newApp(controller, "")

		mockSender.EXPECT().
			SendMessage(gomock.Any(), telegram.ChatID("7"), "Back soon").
			Return(nil).
			Times(1)

		resp := postUpdate(t, app, `{"message":{"chat":{"id":7}}}`, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("send failure still acknowledges the update", func(t *testing.T) {
		controller, mockSender := newWebhookControllerAndMocks(t, 0)
		app := newApp(controller, "")

		mockSender.EXPECT().
			SendMessage(gomock.Any(), telegram.ChatID("42"), DefaultOfflineMessage).
			Return(errors.New("telegram unavailable")).
			Times(1)

		resp := postUpdate(t, app, `{"message":{"chat":{"id":42}}}`, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("malformed updates", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "invalid json", body: "invalid json"},
			{name: "empty object", body: `{}`},
			{name: "no chat", body: `{"message":{"text":"hi"}}`},
			{name: "no chat id", body: `{"message":{"chat":{}}}`},
			{name: "null chat id", body: `{"message":{"chat":{"id":null}}}`},
			{name: "edited message only", body: `{"update_id":3,"edited_message":{"chat":{"id":42}}}`},
			{name: "fractional chat id", body: `{"message":{"chat":{"id":42.5}}}`},
			{name: "exponent chat id", body: `{"message":{"chat":{"id":1e3}}}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				controller, mockSender := newWebhookControllerAndMocks(t, 0)
				app, logs := newAppWithLogs(controller)

				mockSender.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

				resp := postUpdate(t, app, tt.body, nil)
				if !assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode) {
					body, _ := io.ReadAll(resp.Body)
					t.Log(string(body))
				}

				entry := findLogEntry(t, logs, "Received malformed update")
				assert.Equal(t, "warn", entry["level"])
				assert.Contains(t, entry["error"], ErrMalformedUpdate.Error())
			})
		}
	})

	t.Run("redelivered update is answered once", func(t *testing.T) {
		controller, mockSender := newWebhookControllerAndMocks(t, time.Minute)
		app := newApp(controller, "")

		mockSender.EXPECT().
			SendMessage(gomock.Any(), telegram.ChatID("42"), DefaultOfflineMessage).
			Return(nil).
			Times(1)

		for range 3 {
			resp := postUpdate(t, app, `{"update_id":77,"message":{"chat":{"id":42}}}`, nil)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})

	t.Run("distinct updates are all answered", func(t *testing.T) {
		controller, mockSender := newWebhookControllerAndMocks(t, time.Minute)
		app := newApp(controller, "")

		mockSender.EXPECT().
			SendMessage(gomock.Any(), telegram.ChatID("42"), DefaultOfflineMessage).
			Return(nil).
			Times(2)

		postUpdate(t, app, `{"update_id":1,"message":{"chat":{"id":42}}}`, nil)
		postUpdate(t, app, `{"update_id":2,"message":{"chat":{"id":42}}}`, nil)
	})
}

func TestSecretTokenMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("matching token", func(t *testing.T) {
		controller, mockSender := newWebhookControllerAndMocks(t, 0)
		app := newApp(controller, "s3cr3t")

		mockSender.EXPECT().SendMessage(gomock.Any(), telegram.ChatID("42"), DefaultOfflineMessage).Return(nil).Times(1)

		resp := postUpdate(t, app, `{"message":{"chat":{"id":42}}}`, map[string]string{SecretTokenHeader: "s3cr3t"})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing or wrong token", func(t *testing.T) {
		for _, headers := range []map[string]string{nil, {SecretTokenHeader: "wrong"}} {
			controller, mockSender := newWebhookControllerAndMocks(t, 0)
			app := newApp(controller, "s3cr3t")

			mockSender.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			resp := postUpdate(t, app, `{"message":{"chat":{"id":42}}}`, headers)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		}
	})
}

func TestParseUpdate(t *testing.T) {
	t.Parallel()

	update, err := parseUpdate([]byte(`{"update_id":10,"message":{"message_id":3,"text":"hello","chat":{"id":-100}}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(10), update.UpdateID)
	assert.Equal(t, telegram.ChatID("-100"), update.Message.Chat.ID)
	assert.Equal(t, "hello", update.Message.Text)

	_, err = parseUpdate([]byte(`{"message":null}`))
	require.ErrorIs(t, err, ErrMalformedUpdate)
}

func newApp(controller *WebhookController, secretToken string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fibercommon.ErrorHandler(c, err)
		},
		DisableStartupMessage: true,
	})
	app.Post("/webhook", SecretTokenMiddleware(secretToken), controller.HandleUpdate)
	return app
}

// newAppWithLogs is newApp with a request logger that writes JSON lines into the returned buffer.
func newAppWithLogs(controller *WebhookController) (*fiber.App, *bytes.Buffer) {
	logs := &bytes.Buffer{}
	logger := zerolog.New(logs).Level(zerolog.DebugLevel)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fibercommon.ErrorHandler(c, err)
		},
		DisableStartupMessage: true,
	})
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(logger.WithContext(c.UserContext()))
		return c.Next()
	})
	app.Post("/webhook", controller.HandleUpdate)
	return app, logs
}

// findLogEntry returns the first JSON log line with the given message.
func findLogEntry(t *testing.T, logs *bytes.Buffer, message string) map[string]any {
	t.Helper()
	for _, line := range bytes.Split(logs.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == message {
			return entry
		}
	}
	t.Fatalf("no log entry %q in:\n%s", message, logs.String())
	return nil
}

func newWebhookControllerAndMocks(t *testing.T, dedupeTTL time.Duration) (*WebhookController, *MockMessageSender) {
	ctrl := gomock.NewController(t)
	mockSender := NewMockMessageSender(ctrl)
	return NewWebhookController(mockSender, "", dedupeTTL), mockSender
}

func postUpdate(t *testing.T, app *fiber.App, body string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
