// Package utils provides general-purpose helper utilities used across the
// client: HTTP client construction, bearer/JWT helpers and id generation.
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrInvalidProxy is returned when a proxy setting cannot be turned into a
// URL.
var ErrInvalidProxy = errors.New("invalid proxy")

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client, _ := utils.NewHTTPClient(30*time.Second, "")
//	resp, err := client.R().Get("https://example.com")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates a new HTTPClient with the given request timeout and
// an optional proxy. A zero timeout means no timeout; an empty proxy means a
// direct connection.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
func NewHTTPClient(timeout time.Duration, proxy string) (*HTTPClient, error) {
	client := resty.New().SetTimeout(timeout)

	if proxy != "" {
		proxyURL, err := ProxyURL(proxy)
		if err != nil {
			return nil, err
		}
		client.SetProxy(proxyURL)
	}

	return &HTTPClient{Client: client}, nil
}

// ProxyURL normalizes a proxy setting. "host:port" is read as an HTTP proxy.
func ProxyURL(proxy string) (string, error) {
	proxy = strings.TrimSpace(proxy)
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}

	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidProxy, proxy)
	}
	return u.String(), nil
}
