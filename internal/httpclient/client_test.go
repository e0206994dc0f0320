package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBodyWithinLimit(t *testing.T) {
	t.Parallel()

	data, err := ReadBody(strings.NewReader("hello"), 16)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadBodyExceedsLimit(t *testing.T) {
	t.Parallel()

	_, err := ReadBody(strings.NewReader(strings.Repeat("x", 17)), 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16 byte limit")
}

func TestBreakerOpensAfterRepeatedServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewWithCircuitBreaker(time.Second, nil, "breaker-open-test")
	for i := 0; i < 5; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	require.Equal(t, int64(5), hits.Load())

	// the breaker is open now; the request never reaches the server
	_, err := client.Get(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temporarily unavailable")
	assert.Equal(t, int64(5), hits.Load())
}

func TestBreakerIgnoresClientCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewWithCircuitBreaker(time.Second, nil, "breaker-cancel-test")

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 6; i++ {
		req, err := http.NewRequestWithContext(canceled, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		_, err = client.Do(req)
		require.Error(t, err)
	}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
