package security

import (
	"net/http"
	"net/url"
)

// Request is the part of an inbound HTTP request the gatekeeper inspects.
type Request struct {
	IP        string
	URL       string // path plus raw query, as received
	Path      string
	Method    string
	UserAgent string
	Header    http.Header
	Query     url.Values
}

// NewRequest extracts the inspected fields from r. clientIP is resolved by the
// caller so trusted-proxy handling stays with the router.
func NewRequest(r *http.Request, clientIP string) Request {
	req := Request{
		IP:        clientIP,
		Method:    r.Method,
		UserAgent: r.UserAgent(),
		Header:    r.Header,
	}
	if r.URL != nil {
		req.URL = r.URL.RequestURI()
		req.Path = r.URL.Path
		req.Query = r.URL.Query()
	}
	if r.RequestURI != "" {
		req.URL = r.RequestURI
	}
	return req
}
