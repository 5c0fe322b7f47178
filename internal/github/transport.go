package github

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httputil"
	"time"
)

const (
	defaultMaxAttempts = 3
	maxRetryAttempts   = 10
	defaultRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 30 * time.Second
)

// debugTransport wraps an HTTP transport and logs requests/responses
type debugTransport struct {
	transport http.RoundTripper
}

func (d *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqDump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump request: %w", err)
	}
	slog.Debug(">>> request", "dump", string(reqDump))

	resp, err := d.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	respDump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump response: %w", err)
	}
	slog.Debug("<<< response", "dump", string(respDump))

	return resp, nil
}

// retryTransport retries requests that failed at the network level or with a
// gateway status. GraphQL errors arrive with status 200 and are never retried.
type retryTransport struct {
	transport   http.RoundTripper
	maxAttempts int
	baseDelay   time.Duration
}

func newRetryTransport(transport http.RoundTripper, maxAttempts int) *retryTransport {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	maxAttempts = min(maxAttempts, maxRetryAttempts)
	return &retryTransport{
		transport:   transport,
		maxAttempts: maxAttempts,
		baseDelay:   defaultRetryDelay,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := t.transport.RoundTrip(req)
		if attempt >= t.maxAttempts || !isTransient(resp, err) || !rewindable(req) {
			return resp, err
		}

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		delay := t.backoff(attempt)
		slog.Debug("retrying request",
			"url", req.URL.String(),
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}

		next := req.Clone(req.Context())
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", bodyErr)
			}
			next.Body = body
		}
		req = next
	}
}

// backoff doubles the base delay per attempt up to maxRetryDelay and adds up
// to one base delay of jitter
func (t *retryTransport) backoff(attempt int) time.Duration {
	delay := t.baseDelay
	for i := 1; i < attempt && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	delay = min(delay, maxRetryDelay)
	if t.baseDelay > 0 {
		delay += time.Duration(rand.Int63n(int64(t.baseDelay)))
	}
	return delay
}

func isTransient(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func rewindable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}
