package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/counter-action/logger"
)

// stubResponse scripts one physical attempt's outcome
type stubResponse struct {
	status     int
	body       string
	retryAfter string
}

// scriptedServer serves the scripted responses in order, repeating the
// last one if more attempts arrive.
func scriptedServer(t *testing.T, script []stubResponse, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := *hits
		if idx >= len(script) {
			idx = len(script) - 1
		}
		*hits++

		resp := script[idx]
		if resp.retryAfter != "" {
			w.Header().Set("Retry-After", resp.retryAfter)
		}
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
}

// newTestClient returns a client whose sleeps are recorded instead of served
func newTestClient(t *testing.T, waits *[]time.Duration) *client {
	t.Helper()
	c, ok := NewClient(logger.New("error", false)).(*client)
	require.True(t, ok)
	c.sleep = func(d time.Duration) {
		*waits = append(*waits, d)
	}
	return c
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{{status: 200, body: `{"value":1}`}}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	resp, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `{"value":1}`, string(resp.Body))
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, 1, hits)
	assert.Empty(t, waits)
}

func TestDoRetriesTransientServerErrors(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{
		{status: 503},
		{status: 503},
		{status: 200, body: `{"value":10}`},
	}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	resp, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `{"value":10}`, string(resp.Body))
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, 3, hits)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second}, waits)
}

func TestDoBackoffSequenceDoublesToCap(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{{status: 500, body: "boom"}}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	resp, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)

	// Attempts are exhausted; the final 5xx response is returned as-is.
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "boom", string(resp.Body))
	assert.Equal(t, 5, resp.Attempts)
	assert.Equal(t, 5, hits)
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}, waits)
}

func TestDoHonorsRetryAfterOn429(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{
		{status: 429, retryAfter: "2"},
		{status: 429},
		{status: 200, body: `{"value":3}`},
	}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	resp, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, resp.Attempts)
	// The header-driven wait replaces the first backoff, but the stored
	// backoff still doubles from its pre-wait value for the next retry.
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 1 * time.Second}, waits)
}

func TestDoIgnoresUnparseableRetryAfter(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{
		{status: 429, retryAfter: "soon"},
		{status: 200, body: `{}`},
	}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	_, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, waits)
}

func TestDoExhausted429ReturnsResponse(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{{status: 429, body: `{"error":"rate limited"}`}}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	resp, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, `{"error":"rate limited"}`, string(resp.Body))
	assert.Equal(t, 5, hits)
	assert.Len(t, waits, 4)
}

func TestDoDoesNotRetryOtherStatuses(t *testing.T) {
	var hits int
	srv := scriptedServer(t, []stubResponse{{status: 404, body: `{"error":"not found"}`}}, &hits)
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	resp, err := c.Do(context.Background(), http.MethodGet, &Request{URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, 1, hits)
	assert.Empty(t, waits)
}

func TestDoNetworkFailurePropagatesAfterCeiling(t *testing.T) {
	// A server that is immediately closed yields connection errors.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	_, err := c.Do(context.Background(), http.MethodGet, &Request{URL: url})
	require.Error(t, err)

	assert.True(t, IsErrorType(err, NetworkError))
	assert.Len(t, waits, 4)
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}, waits)
}

func TestDoSendsConfiguredHeaders(t *testing.T) {
	var gotAccept, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, &waits)

	_, err := c.Do(context.Background(), http.MethodPost, &Request{
		URL: srv.URL,
		Headers: map[string]string{
			"Accept":        "application/json",
			"Authorization": "Bearer abc123",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestDoValidatesRequest(t *testing.T) {
	var waits []time.Duration
	c := newTestClient(t, &waits)

	_, err := c.Do(context.Background(), http.MethodGet, nil)
	assert.True(t, IsErrorType(err, ValidationError))

	_, err = c.Do(context.Background(), http.MethodGet, &Request{})
	assert.True(t, IsErrorType(err, ValidationError))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 1*time.Second, nextBackoff(500*time.Millisecond))
	assert.Equal(t, 8*time.Second, nextBackoff(4*time.Second))
	// Capped once the ceiling is reached.
	assert.Equal(t, 8*time.Second, nextBackoff(8*time.Second))
}

func TestRetryAfterDelay(t *testing.T) {
	fallback := 500 * time.Millisecond

	mk := func(v string) http.Header {
		h := http.Header{}
		if v != "" {
			h.Set("Retry-After", v)
		}
		return h
	}

	assert.Equal(t, 2*time.Millisecond, retryAfterDelay(mk("2"), fallback))
	assert.Equal(t, time.Duration(0), retryAfterDelay(mk("0"), fallback))
	assert.Equal(t, fallback, retryAfterDelay(mk(""), fallback))
	assert.Equal(t, fallback, retryAfterDelay(mk("soon"), fallback))
	assert.Equal(t, fallback, retryAfterDelay(mk("-1"), fallback))
	assert.Equal(t, 100*time.Millisecond, retryAfterDelay(mk(" 100 "), fallback))
}
