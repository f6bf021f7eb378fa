package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 10 * time.Second
	apiPrefix      = "/api"
	maxErrorBody   = 4 << 10
)

// Options configure a Client
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient defaults to a new http.Client; its own Timeout is left alone
	HTTPClient *http.Client
	// OnUnauthorized is emitted when the backend rejects the session token
	OnUnauthorized func(ctx context.Context)
}

// Client calls the collections REST API on behalf of the session found in
// the request context. It never retries: one failed request is one error.
type Client struct {
	baseURL        string
	timeout        time.Duration
	httpClient     *http.Client
	onUnauthorized func(ctx context.Context)
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/") + apiPrefix,
		timeout:        opts.Timeout,
		httpClient:     opts.HTTPClient,
		onUnauthorized: opts.OnUnauthorized,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h, ok := sessions.HandleFrom(ctx); ok {
		if token := h.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serverErr := &apperrors.ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		if serverErr.IsUnauthorized() {
			log.Warn().Str("method", method).Str("path", path).Msg("Backend rejected session token")
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx)
			}
		}
		return fmt.Errorf("%s %s: %w", method, path, serverErr)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(method, path, err)
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

// transportError separates requests that ran out of time from requests that
// never reached the backend.
func transportError(method, path string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.Wrapf(apperrors.ErrTimeout, "%s %s", method, path)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return fmt.Errorf("%s %s: %w: %v", method, path, apperrors.ErrUnreachable, err)
}
