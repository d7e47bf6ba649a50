// Package telegram wraps the Telegram Bot API methods the bot uses on top of httpclient.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/DIMO-Network/telegram-webhook/internal/httpclient"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// API calls Bot API methods for a single bot token.
type API struct {
	client  *httpclient.Client
	baseURL string
	token   string
}

// New creates a new API.
func New(client *httpclient.Client, baseURL, token string) (*API, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse telegram API URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("telegram API URL %q must include scheme and host", baseURL)
	}
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	return &API{
		client:  client,
		baseURL: strings.TrimSuffix(parsedURL.String(), "/"),
		token:   token,
	}, nil
}

// SendMessage sends a text message to the chat.
func (a *API) SendMessage(ctx context.Context, chatID ChatID, text string) error {
	_, err := call[json.RawMessage](ctx, a, http.MethodPost, "sendMessage", httpclient.Params{
		"chat_id": httpclient.String(chatID.String()),
		"text":    httpclient.String(text),
	})
	return err
}

// GetMe returns the bot's own user. Useful to check the token.
func (a *API) GetMe(ctx context.Context) (*User, error) {
	return call[User](ctx, a, http.MethodGet, "getMe", nil)
}

// SetWebhook registers the URL Telegram pushes updates to. An empty secretToken
// disables the X-Telegram-Bot-Api-Secret-Token header.
func (a *API) SetWebhook(ctx context.Context, webhookURL, secretToken string, allowedUpdates []string) error {
	params := httpclient.Params{
		"url": httpclient.String(webhookURL),
	}
	if secretToken != "" {
		params["secret_token"] = httpclient.String(secretToken)
	}
	if len(allowedUpdates) > 0 {
		params["allowed_updates"] = httpclient.Structured(allowedUpdates)
	}
	_, err := call[bool](ctx, a, http.MethodPost, "setWebhook", params)
	return err
}

// DeleteWebhook removes the webhook registration.
func (a *API) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	params := httpclient.Params{}
	if dropPendingUpdates {
		params["drop_pending_updates"] = httpclient.String("true")
	}
	_, err := call[bool](ctx, a, http.MethodPost, "deleteWebhook", params)
	return err
}

// GetFile resolves a file id into a downloadable file path.
func (a *API) GetFile(ctx context.Context, fileID string) (*File, error) {
	return call[File](ctx, a, http.MethodGet, "getFile", httpclient.Params{
		"file_id": httpclient.String(fileID),
	})
}

// DownloadFile resolves fileID and writes its content to outputPath inside the
// client's download directory.
func (a *API) DownloadFile(ctx context.Context, fileID, outputPath string) (*File, error) {
	file, err := a.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram getFile returned no file path for %s", fileID)
	}

	req, err := a.client.NewDownloadRequest(a.fileURL(file.FilePath), outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare download: %w", err)
	}
	if _, err := a.client.Do(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return file, nil
}

func (a *API) methodURL(method string) string {
	return a.baseURL + "/bot" + a.token + "/" + method
}

func (a *API) fileURL(filePath string) string {
	return a.baseURL + "/file/bot" + a.token + "/" + strings.TrimPrefix(filePath, "/")
}

func call[T any](ctx context.Context, a *API, httpMethod, method string, params httpclient.Params) (*T, error) {
	body, err := a.client.Execute(ctx, httpMethod, a.methodURL(method), params, nil, nil)
	if err != nil {
		// Bot API errors come back as 4xx with a JSON description.
		if statusErr, ok := httpclient.IsStatusError(err); ok {
			var resp APIResponse[json.RawMessage]
			if jsonErr := json.Unmarshal([]byte(statusErr.Body), &resp); jsonErr == nil && resp.Description != "" {
				return nil, &APIError{Method: method, Code: statusErr.StatusCode, Description: resp.Description, Err: err}
			}
		}
		return nil, fmt.Errorf("telegram %s request failed: %w", method, err)
	}

	var resp APIResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode telegram %s response: %w", method, err)
	}
	if !resp.OK {
		return nil, &APIError{Method: method, Code: resp.ErrorCode, Description: resp.Description}
	}
	return &resp.Result, nil
}
