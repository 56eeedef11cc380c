// Package httpclient executes HTTP requests against the counter service
// with a fixed bounded retry policy. It retries network failures, 429s
// (honoring Retry-After), and 5xx responses, and hands every other
// response back untouched for interpretation.
package httpclient

import (
	"context"
	nethttp "net/http"
)

// Client defines the HTTP executor interface used by the action
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request represents an HTTP request with all necessary data
type Request struct {
	URL     string
	Headers map[string]string
}

// Response represents an HTTP response after all retries have settled
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	// Attempts is the number of physical attempts performed, 1-based
	Attempts int
}
