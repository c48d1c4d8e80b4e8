package api

import "net/http"

// RequestOptions are per-request overrides
type RequestOptions struct {
	header http.Header
	noAuth bool
}

// RequestOption sets one per-request override
type RequestOption func(*RequestOptions)

// WithHeader sets a request header. Caller headers win over the defaults,
// including Authorization and Content-Type.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		o.header.Set(key, value)
	}
}

// WithoutAuth skips bearer token injection, for endpoints used before login
func WithoutAuth() RequestOption {
	return func(o *RequestOptions) {
		o.noAuth = true
	}
}

// NewRequestOptions applies opts to a fresh RequestOptions
func NewRequestOptions(opts ...RequestOption) *RequestOptions {
	return newRequestOptions(opts)
}

func newRequestOptions(opts []RequestOption) *RequestOptions {
	ro := &RequestOptions{header: make(http.Header)}
	for _, opt := range opts {
		opt(ro)
	}
	return ro
}
