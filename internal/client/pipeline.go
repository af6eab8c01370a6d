// ABOUTME: Request/response pipeline stages for the SafePulse API client
// ABOUTME: Stages run in declaration order around every backend call

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Request describes an outbound call. Path is relative to the client's
// base URL. Retried is set once the request has been replayed after a
// token refresh; a retried request is never refreshed again.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	Body    []byte
	Binary  bool
	Retried bool
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	out := *r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = http.Header{}
	}
	if r.Query != nil {
		out.Query = url.Values{}
		for k, v := range r.Query {
			out.Query[k] = append([]string(nil), v...)
		}
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return &out
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestStage transforms a request before it is sent. Stages never fail.
type RequestStage func(ctx context.Context, req *Request) *Request

// ResponseStage inspects the outcome of a send and may replace it.
type ResponseStage func(ctx context.Context, req *Request, resp *Response, err error) (*Response, error)

// RequestIDHeader carries the correlation ID of a call. A replayed request
// keeps its original ID.
const RequestIDHeader = "X-Request-ID"

// withDefaultHeaders sets the JSON content type and an Accept header
// unless the caller already chose them.
func withDefaultHeaders(_ context.Context, req *Request) *Request {
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		if req.Binary {
			req.Header.Set("Accept", "*/*")
		} else {
			req.Header.Set("Accept", "application/json")
		}
	}
	return req
}

// withRequestID tags the request with a correlation ID.
func withRequestID(_ context.Context, req *Request) *Request {
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return req
}

// bearerToken attaches the current access token unless the caller already
// set an Authorization header. Without a token the request goes out
// unauthenticated and the backend decides.
func bearerToken(store TokenStore) RequestStage {
	return func(_ context.Context, req *Request) *Request {
		if req.Header.Get("Authorization") != "" {
			return req
		}
		if token := store.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}
}
