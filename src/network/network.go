package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"
)

const maxBodyBytes = 4 << 20

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.Code)
}

// retriable is true for rate limiting and server side failures.
func (e *StatusError) retriable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// -----------------------------------------------------------------------------

type AsyncNetworkManager struct {
	Config    *models.MConfig
	Client    *http.Client
	Logger    *logger.Logger
	BaseDelay time.Duration
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	timeout := time.Duration(cfg.Network.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AsyncNetworkManager{
		Config:    cfg,
		Client:    &http.Client{Timeout: timeout},
		Logger:    log,
		BaseDelay: time.Second,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewNetworkError("invalid url", err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	return nm.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	})
}

// -----------------------------------------------------------------------------

// PostJSON marshals payload and POSTs it with the extra headers.
func (nm *AsyncNetworkManager) PostJSON(ctx context.Context, urlStr string, headers map[string]string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, helpers.NewNetworkError("encoding request body", err)
	}

	return nm.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	maxRetries := nm.Config.Network.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			// quadratic backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i*i) * nm.BaseDelay):
			}
		}

		req, err := build()
		if err != nil {
			return nil, helpers.NewNetworkError("building request", err)
		}
		if req.Header.Get("User-Agent") == "" && nm.Config.Network.UserAgent != "" {
			req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
		}

		body, err := nm.send(req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if se, ok := err.(*StatusError); ok && !se.retriable() {
			break
		}
		nm.Logger.Info("Request to %s failed (attempt %d/%d): %v", req.URL.Host, i+1, maxRetries+1, err)
	}

	return nil, helpers.NewNetworkError("request failed", lastErr)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) send(req *http.Request) ([]byte, error) {
	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
