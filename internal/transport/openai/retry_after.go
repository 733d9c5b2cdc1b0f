package openai

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type retryAfterKey struct{}

// retryAfterHint receives the Retry-After value of the last response of one Embed call.
type retryAfterHint struct {
	mu sync.Mutex
	d  time.Duration
}

func (h *retryAfterHint) set(d time.Duration) {
	h.mu.Lock()
	h.d = d
	h.mu.Unlock()
}

func (h *retryAfterHint) get() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.d
}

// retryAfterTransport copies Retry-After from 429/503 responses into the
// request's hint. go-openai errors do not expose response headers.
type retryAfterTransport struct {
	next http.RoundTripper
	now  func() time.Time
}

func (t *retryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		if hint, ok := req.Context().Value(retryAfterKey{}).(*retryAfterHint); ok {
			if d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), t.now()); ok {
				hint.set(d)
			}
		}
	}
	return resp, nil
}

// parseRetryAfter accepts delta-seconds or an HTTP-date. Past dates yield zero.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
