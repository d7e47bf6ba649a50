package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

// Request is a prepared outbound request, ready for Client.Do.
type Request struct {
	method        string
	url           string
	body          []byte
	header        http.Header
	downloadToken string
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns the fully-qualified request URL including the query string.
func (r *Request) URL() string { return r.url }

// IsDownload reports whether the response body is streamed into a file.
func (r *Request) IsDownload() bool { return r.downloadToken != "" }

// NewRequest builds a GET or POST request. Params are always encoded in the query
// string; body is sent as the payload and is only allowed with POST.
func (c *Client) NewRequest(method, rawURL string, params Params, body []byte, header http.Header) (*Request, error) {
	reqURL, err := parseURL(rawURL)
	if err != nil {
		return nil, c.invalidArgument("URL must be an absolute URL: %v", err)
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, c.invalidArgument("method must be either GET or POST, got %q", method)
	}
	if method != http.MethodPost && len(body) > 0 {
		return nil, c.invalidArgument("cannot send request body content without POST method")
	}

	values, err := params.Values()
	if err != nil {
		return nil, c.invalidArgument("%v", err)
	}
	if len(values) > 0 {
		query := reqURL.Query()
		for name, vals := range values {
			query[name] = vals
		}
		reqURL.RawQuery = query.Encode()
	}

	c.logger.Debug().Str("method", method).Str("url", redactURL(reqURL.String())).Msg("HTTP request")

	return &Request{
		method: method,
		url:    reqURL.String(),
		body:   body,
		header: header.Clone(),
	}, nil
}

// NewDownloadRequest builds a GET request whose body is written to outputPath,
// relative to the client's download directory. The file is opened immediately and
// stays registered until the request completes in Do.
func (c *Client) NewDownloadRequest(rawURL, outputPath string) (*Request, error) {
	reqURL, err := parseURL(rawURL)
	if err != nil {
		return nil, c.invalidArgument("URL must be an absolute URL: %v", err)
	}
	if !filepath.IsLocal(outputPath) {
		return nil, c.invalidArgument("output path %q must be relative to the download directory", outputPath)
	}

	file, err := os.OpenFile(filepath.Join(c.downloadDir, outputPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		c.logger.Error().Err(err).Str("path", outputPath).Msg("Cannot write to download path")
		return nil, fmt.Errorf("%w: cannot write to path %q: %w", ErrFilesystem, outputPath, err)
	}

	token := uuid.NewString()
	c.downloads.register(token, file)

	c.logger.Debug().Str("url", redactURL(reqURL.String())).Str("path", outputPath).Msg("HTTP download request")

	return &Request{
		method:        http.MethodGet,
		url:           reqURL.String(),
		downloadToken: token,
	}, nil
}

func (c *Client) invalidArgument(format string, args ...any) error {
	err := fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
	c.logger.Error().Err(err).Msg("Failed to build request")
	return err
}

func parseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("missing scheme or host in %q", rawURL)
	}
	return parsed, nil
}

var botTokenSegment = regexp.MustCompile(`/bot[^/?]+`)

// redactURL hides the bot token segment of Telegram API URLs.
func redactURL(u string) string {
	return botTokenSegment.ReplaceAllString(u, "/bot<redacted>")
}
