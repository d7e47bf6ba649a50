// Package httpclient builds outbound HTTP requests, executes them and classifies
// the response by status code. Download requests stream their body into a file
// that is tracked until the request completes.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	// UserAgent is attached to every outbound request.
	UserAgent = "DIMO-Telegram-Webhook/1.0"

	defaultTimeout = 30 * time.Second
	// Maximum response body size kept for failure logging
	maxErrorBodySize = 1024
	// Download requests follow at most this many redirects
	maxDownloadRedirects = 1
)

// Client executes requests built by NewRequest and NewDownloadRequest.
type Client struct {
	api         *http.Client
	download    *http.Client
	downloads   *downloadRegistry
	downloadDir string
	logger      zerolog.Logger
}

// New creates a Client. A nil httpClient gets a default with a 30s timeout.
// Download output paths are resolved relative to downloadDir.
func New(httpClient *http.Client, downloadDir string, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if downloadDir == "" {
		downloadDir = "."
	}

	api := *httpClient
	api.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	download := *httpClient
	download.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) > maxDownloadRedirects {
			return fmt.Errorf("stopped after %d redirect(s)", maxDownloadRedirects)
		}
		return nil
	}

	return &Client{
		api:         &api,
		download:    &download,
		downloads:   newDownloadRegistry(),
		downloadDir: downloadDir,
		logger:      logger,
	}
}

// PendingDownloads returns the number of download requests that have been
// prepared but not yet completed.
func (c *Client) PendingDownloads() int {
	return c.downloads.Len()
}

// Execute builds a request with NewRequest and performs it with Do.
func (c *Client) Execute(ctx context.Context, method, rawURL string, params Params, body []byte, header http.Header) ([]byte, error) {
	req, err := c.NewRequest(method, rawURL, params, body, header)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Do performs the request and returns the response body when the server answers
// 200 OK. Any other status yields a *StatusError. For download requests the body is
// written to the registered file and a nil body is returned; the file is closed
// once the request completes, whatever the outcome.
func (c *Client) Do(ctx context.Context, req *Request) ([]byte, error) {
	if req.IsDownload() {
		if _, ok := c.downloads.lookup(req.downloadToken); !ok {
			return nil, fmt.Errorf("%w: download request already completed", ErrInvalidArgument)
		}
	}

	var payload io.Reader
	if len(req.body) > 0 {
		payload = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, payload)
	if err != nil {
		_ = c.releaseDownload(req)
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrInvalidArgument, err)
	}
	for name, values := range req.header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}
	if len(req.body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("User-Agent", UserAgent)

	httpClient := c.api
	if req.IsDownload() {
		httpClient = c.download
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(urlErr.URL)
		}
		c.logger.Error().Err(err).Str("method", req.method).Msg("HTTP request failed")
		_ = c.releaseDownload(req)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, readErr := c.readBody(req, resp)
	if err := c.releaseDownload(req); err != nil && readErr == nil {
		readErr = err
	}

	effectiveURL := redactURL(resp.Request.URL.String())
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Internal server error")
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn().Msg("Unauthorized request (check token)")
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Str("effectiveUrl", effectiveURL).
			Msgf("Request failure with code %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode:   resp.StatusCode,
			Body:         string(body),
			EffectiveURL: effectiveURL,
		}
	}
	if readErr != nil {
		return nil, readErr
	}
	return body, nil
}

func (c *Client) readBody(req *Request, resp *http.Response) ([]byte, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return body, nil
	}
	if req.IsDownload() {
		dst, ok := c.downloads.lookup(req.downloadToken)
		if !ok {
			return nil, fmt.Errorf("%w: download destination is no longer registered", ErrFilesystem)
		}
		if _, err := io.Copy(dst, resp.Body); err != nil {
			return nil, fmt.Errorf("%w: failed to write download: %w", ErrFilesystem, err)
		}
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}
	return body, nil
}

func (c *Client) releaseDownload(req *Request) error {
	if !req.IsDownload() {
		return nil
	}
	released, err := c.downloads.release(req.downloadToken)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to close download destination")
		return fmt.Errorf("%w: failed to close download: %w", ErrFilesystem, err)
	}
	if released {
		c.logger.Debug().Msg("Download destination closed")
	}
	return nil
}
