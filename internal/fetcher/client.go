// Package fetcher pulls third-party data for the dashboard widgets.
//
// Every provider follows the same contract: a failed call is logged, the
// affected unit is dropped, and the rest of the batch continues. Fetchers
// never retry and never return errors to their callers.
package fetcher

import (
	"net"
	"net/http"
	"time"
)

const (
	// DefaultClientTimeout is the total request timeout.
	DefaultClientTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 8 * time.Second
)

// userAgent identifies the service to upstream providers.
// GitHub rejects requests without one.
const userAgent = "Pulsedash/1.0"

// maxResponseBytes caps how much of an upstream body is decoded.
const maxResponseBytes = 4 << 20

// NewHTTPClient creates the shared HTTP client for upstream calls.
// A non-positive timeout selects DefaultClientTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
