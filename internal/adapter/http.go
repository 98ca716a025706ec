package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-notes-sync/internal/config"
	"github.com/MKhiriev/go-notes-sync/internal/logger"
	"github.com/MKhiriev/go-notes-sync/internal/utils"
)

type httpServerAdapter struct {
	client  *utils.HTTPClient
	baseURL string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.Endpoint and
// configures the underlying HTTP client with the resolved base URL, request
// timeout and optional proxy. appCfg.Token, when set, becomes the initial
// bearer token.
//
// Returns an error if adapterCfg.Endpoint is empty or cannot be parsed as a
// valid URL, or if the proxy is invalid.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter endpoint: %w", err)
	}

	client, err := utils.NewHTTPClient(adapterCfg.RequestTimeout, adapterCfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	client.SetBaseURL(baseURL)

	h := &httpServerAdapter{client: client, baseURL: baseURL, logger: logger}
	h.SetToken(appCfg.Token)
	return h, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent authenticated requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// UserID implements [ServerAdapter]. The id is the unverified subject claim
// of the bearer token.
func (h *httpServerAdapter) UserID() (string, error) {
	token := h.Token()
	if token == "" {
		return "", ErrNoToken
	}

	id, err := utils.ParseUserIDFromJWT(token)
	if err != nil {
		h.logger.Err(err).
			Str("func", "httpServerAdapter.UserID").
			Msg("failed to read user id from token")
		return "", fmt.Errorf("user id from token: %w", err)
	}
	return id, nil
}

// BaseURL implements [ServerAdapter].
func (h *httpServerAdapter) BaseURL() string {
	return h.baseURL
}

// Get implements [ServerAdapter].
func (h *httpServerAdapter) Get(ctx context.Context, path string, out any) error {
	resp, err := h.authedRequest(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("get %s request: %w", path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	return decodeBody(resp, out)
}

// Post implements [ServerAdapter].
func (h *httpServerAdapter) Post(ctx context.Context, path string, body any, out any) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s request: %w", path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	return decodeBody(resp, out)
}

// SetAuthHeaders implements [ServerAdapter].
func (h *httpServerAdapter) SetAuthHeaders(req *resty.Request) *resty.Request {
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	return h.SetAuthHeaders(h.client.R().SetContext(ctx))
}

func decodeBody(resp *resty.Response, out any) error {
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", resp.Request.URL, err)
	}
	return nil
}
