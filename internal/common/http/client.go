// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"

	"loan-approval-client/internal/common/metrics"
)

type Client struct {
	httpClient *http.Client
}

// NewClient returns a client whose requests are bounded by timeout (0 means none).
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Wrap uses an existing http.Client, e.g. one from httptest.
func Wrap(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithContext sends req under ctx and records its duration against endpoint.
func (c *Client) DoWithContext(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	active := metrics.ScoringRequestsActive.WithLabelValues(endpoint)
	active.Inc()
	defer active.Dec()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ScoringRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return resp, err
}

func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
