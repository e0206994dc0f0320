package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	biteboterrors "bitebot/internal/errors"
	"bitebot/internal/utils"
)

// breakerTransport trips open after repeated upstream failures so a dead
// model provider or restaurant backend fails fast instead of tying up every
// chat turn until its timeout.
type breakerTransport struct {
	base    http.RoundTripper
	breaker *biteboterrors.CircuitBreaker
}

// NewWithCircuitBreaker returns a client with the given timeout, request
// logging, and a circuit breaker labeled name on its transport.
func NewWithCircuitBreaker(timeout time.Duration, logger *utils.Logger, name string) *http.Client {
	client := New(timeout, logger)
	client.Transport = &breakerTransport{
		base:    client.Transport,
		breaker: biteboterrors.NewCircuitBreaker(name, biteboterrors.DefaultCircuitBreakerConfig()),
	}
	return client
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.breaker.Allow(); err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		// a caller hanging up is not an upstream failure
		if errors.Is(err, context.Canceled) {
			t.breaker.Mark(nil)
		} else {
			t.breaker.Mark(err)
		}
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		t.breaker.Mark(fmt.Errorf("http status %d", resp.StatusCode))
	} else {
		t.breaker.Mark(nil)
	}
	return resp, nil
}
