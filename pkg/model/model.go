package model

import (
	"net/http"
	"net/url"
	"time"
)

// Response is a completed exchange as handed over by the request-execution
// library.
type Response struct {
	// Name is the label the execution library gave the response, if any.
	Name          string
	Protocol      string
	StatusCode    int
	StatusMessage string
	ContentType   string
	Header        http.Header
	// RawHeaders is the header block as received on the wire.
	RawHeaders string
	// Body is the decoded text body.
	Body string
	// RawBody holds the body bytes exactly as received.
	RawBody []byte
	// ParsedBody is the body decoded into Go values (JSON bodies only).
	ParsedBody      interface{}
	PrettyPrintBody string
	Timings         Timings
	Request         *Request
}

func (r *Response) HasBody() bool {
	return r != nil && (len(r.RawBody) > 0 || r.Body != "")
}

// Request is the request that produced a Response.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

func (r *Request) ParsedURL() (*url.URL, bool) {
	if r == nil || r.URL == "" {
		return nil, false
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, false
	}
	return u, true
}

type Timings struct {
	Wait      time.Duration
	DNS       time.Duration
	TCP       time.Duration
	TLS       time.Duration
	Request   time.Duration
	FirstByte time.Duration
	Download  time.Duration
	Total     time.Duration
}

type TestResult struct {
	Message string
	Passed  bool
	Error   string
}

// Region is the request block of a request file a response originated from.
type Region struct {
	Name     string
	Line     *int
	MetaData map[string]string
}

func (r *Region) Meta(key string) (string, bool) {
	if r == nil || r.MetaData == nil {
		return "", false
	}
	v, ok := r.MetaData[key]
	return v, ok
}
