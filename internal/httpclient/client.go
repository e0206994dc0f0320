// Package httpclient builds the outbound HTTP clients used to reach the
// LLM service and the restaurant backend.
package httpclient

import (
	"net/http"
	"time"

	"bitebot/internal/utils"
)

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *utils.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)
	if t.logger != nil {
		if err != nil {
			t.logger.Debug("%s %s failed after %s: %v", req.Method, req.URL.Path, elapsed, err)
		} else {
			t.logger.Debug("%s %s -> %d in %s", req.Method, req.URL.Path, resp.StatusCode, elapsed)
		}
	}
	return resp, err
}

// New returns an HTTP client with the given timeout and request logging.
func New(timeout time.Duration, logger *utils.Logger) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &loggingRoundTripper{
			base:   http.DefaultTransport,
			logger: logger,
		},
	}
}
