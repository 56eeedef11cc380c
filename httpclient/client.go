package httpclient

import (
	"context"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gaborage/counter-action/logger"
)

const (
	// DefaultTimeout is the default duration allotted to a single HTTP exchange
	DefaultTimeout = 30 * time.Second

	// maxAttempts bounds the number of physical attempts per invocation
	maxAttempts = 5

	// baseBackoff is the wait before the first retry; it doubles per retry
	baseBackoff = 500 * time.Millisecond

	// maxBackoff caps the doubling backoff
	maxBackoff = 8 * time.Second

	// retryAfterHeader carries the service's own wait instruction on 429
	// responses, expressed in milliseconds like the backoff.
	retryAfterHeader = "Retry-After"
)

// client implements the Client interface
type client struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	sleep      func(time.Duration)
}

// NewClient creates an executor with the default exchange timeout.
// The retry policy is fixed and not caller-configurable.
func NewClient(log logger.Logger) Client {
	return NewClientWithTimeout(log, DefaultTimeout)
}

// NewClientWithTimeout creates an executor with a custom exchange timeout
func NewClientWithTimeout(log logger.Logger, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &client{
		httpClient: &nethttp.Client{Timeout: timeout},
		logger:     log,
		sleep:      time.Sleep,
	}
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Do performs the HTTP exchange for the request, retrying network
// failures, 429s, and 5xx responses up to the attempt ceiling. Attempts
// are strictly sequential: attempt n+1 never starts before attempt n has
// settled and any mandated wait has elapsed. Whatever response survives
// the policy, including a non-2xx one once attempts are exhausted, is
// returned as-is; classifying it is the interpreter's job.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	backoff := baseBackoff

	for attempt := 1; ; attempt++ {
		c.logRequest(method, req, attempt)

		httpReq, err := c.buildRequest(ctx, method, req)
		if err != nil {
			return nil, err
		}

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if attempt == maxAttempts {
				return nil, NewNetworkError("request execution failed", err)
			}
			c.logRetry(attempt, backoff, 0, err)
			c.sleep(backoff)
			backoff = nextBackoff(backoff)
			continue
		}

		if httpResp.StatusCode == nethttp.StatusTooManyRequests && attempt < maxAttempts {
			// The service's own wait instruction wins for this retry, but
			// the stored backoff still doubles from its prior value.
			wait := retryAfterDelay(httpResp.Header, backoff)
			discardBody(httpResp)
			c.logRetry(attempt, wait, httpResp.StatusCode, nil)
			c.sleep(wait)
			backoff = nextBackoff(backoff)
			continue
		}

		if isTransientStatus(httpResp.StatusCode) && attempt < maxAttempts {
			discardBody(httpResp)
			c.logRetry(attempt, backoff, httpResp.StatusCode, nil)
			c.sleep(backoff)
			backoff = nextBackoff(backoff)
			continue
		}

		resp, err := c.buildResponse(httpResp, attempt)
		if err != nil {
			if attempt == maxAttempts {
				return nil, err
			}
			c.logRetry(attempt, backoff, httpResp.StatusCode, err)
			c.sleep(backoff)
			backoff = nextBackoff(backoff)
			continue
		}

		c.logResponse(resp)
		return resp, nil
	}
}

// nextBackoff doubles the backoff up to the cap
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		next = maxBackoff
	}
	return next
}

// retryAfterDelay returns the Retry-After wait when the header holds a
// non-negative integer, else the fallback backoff.
func retryAfterDelay(headers nethttp.Header, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(headers.Get(retryAfterHeader))
	if raw == "" {
		return fallback
	}

	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func isTransientStatus(code int) bool {
	return code >= 500 && code < 600
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.URL == "" {
		return NewValidationError("URL cannot be empty", "url")
	}
	return nil
}

// buildRequest constructs an *http.Request and applies headers
func (c *client) buildRequest(ctx context.Context, method string, req *Request) (*nethttp.Request, error) {
	httpReq, err := nethttp.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, NewNetworkError("failed to create HTTP request", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, nil
}

// buildResponse reads the body and builds a Response
func (c *client) buildResponse(httpResp *nethttp.Response, attempts int) (*Response, error) {
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		Attempts:   attempts,
	}, nil
}

// discardBody drains and closes a response body that will not be read,
// so the underlying connection can be reused.
func discardBody(httpResp *nethttp.Response) {
	_, _ = io.Copy(io.Discard, httpResp.Body)
	_ = httpResp.Body.Close()
}

// logRequest logs the outgoing attempt
func (c *client) logRequest(method string, req *Request, attempt int) {
	logEvent := c.logger.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", req.URL).
		Int("attempt", attempt)

	if len(req.Headers) > 0 {
		logEvent.Interface("headers", req.Headers)
	}

	logEvent.Msg("counter service request")
}

// logRetry logs a retry decision with the wait about to be served
func (c *client) logRetry(attempt int, wait time.Duration, status int, err error) {
	logEvent := c.logger.Warn().
		Int("attempt", attempt).
		Dur("wait", wait)

	if status != 0 {
		logEvent = logEvent.Int("status", status)
	}
	if err != nil {
		logEvent = logEvent.Err(err)
	}

	logEvent.Msg("retrying counter service request")
}

// logResponse logs the settled response
func (c *client) logResponse(resp *Response) {
	c.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Int("attempts", resp.Attempts).
		Msg("counter service response")
}
