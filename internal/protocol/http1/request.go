// Package http1 implements the minimal HTTP/1.1 subset spoken by the embedded
// endpoint server: an incremental request parser and fixed response framing.
//
// Only GET and POST are understood. There is no chunked transfer-encoding,
// keep-alive or pipelining; each connection carries exactly one request and
// one response.
package http1

import "strings"

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// Request is a parsed HTTP request.
//
// Method is always MethodGet or MethodPost. Path is lower-cased and Version is
// upper-cased. Headers keep the last value seen for a repeated name. Body holds
// every byte that followed the header terminator.
type Request struct {
	Method  string
	Path    string
	Version string
	Headers map[string]string
	Body    []byte
}

// Header returns the value stored for name. An exact match wins; otherwise
// names are compared case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
