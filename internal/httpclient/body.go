package httpclient

import (
	"fmt"
	"io"
)

// Response body caps for the two upstreams this service talks to. Chat
// completions carry echoed transcripts and tool-call payloads and can run
// long; restaurant listings stay small.
const (
	MaxCompletionBody int64 = 8 << 20
	MaxRestaurantBody int64 = 2 << 20
)

// ReadBody reads r in full, failing once the body passes limit bytes.
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitedReader{R: r, N: limit + 1}
	data, err := io.ReadAll(&lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d byte limit", limit)
	}
	return data, nil
}
