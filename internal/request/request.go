package request

import (
	"errors"
	"time"
)

// DefaultTimeout is applied when a descriptor does not carry its own timeout.
const DefaultTimeout = 30 * time.Second

// ErrBodyConflict is returned by Build when a descriptor carries both a raw
// body and a multipart form. Exactly one of the two may be set.
var ErrBodyConflict = errors.New("request: body and multipart form are mutually exclusive")

// ErrMissingTarget is returned by Build when a non-skip descriptor lacks a
// method or URL.
var ErrMissingTarget = errors.New("request: method and url are required")

// Request describes a single HTTP call plus control metadata: the acceptable
// status codes, a timeout, client-level overrides (proxy, user agent,
// compression) and an optional skip-to routing directive. Values are built
// with the fluent WithX methods; every WithX call returns a new value, so a
// finalized Request can be treated as immutable by the execution layer.
type Request struct {
	method       string
	url          string
	headers      map[string]string
	timeout      time.Duration
	body         []byte
	hasBody      bool
	multipart    Form
	hasMultipart bool
	statusCodes  []int
	proxy        string
	userAgent    string
	gzip         bool
	skipTo       string
}

// New returns a descriptor for the given method and URL with defaults:
// 30s timeout, compression enabled, no headers, no body and no status filter.
func New(method, url string) Request {
	return Request{
		method:  method,
		url:     url,
		timeout: DefaultTimeout,
		gzip:    true,
	}
}

// Skip returns a pure routing descriptor: executing it performs no network
// call and only directs the worker to the named step.
func Skip(step string) Request {
	return Request{timeout: DefaultTimeout, gzip: true, skipTo: step}
}

func (r Request) Method() string { return r.method }

func (r Request) URL() string { return r.url }

// WithHeaders replaces the header set. The map is copied, so later mutation
// by the caller does not leak into the descriptor.
func (r Request) WithHeaders(headers map[string]string) Request {
	m := make(map[string]string, len(headers))
	for k, v := range headers {
		m[k] = v
	}
	r.headers = m
	return r
}

// WithHeader sets a single header, keeping any previously set ones.
func (r Request) WithHeader(name, value string) Request {
	m := make(map[string]string, len(r.headers)+1)
	for k, v := range r.headers {
		m[k] = v
	}
	m[name] = value
	r.headers = m
	return r
}

// Headers returns the header map. Callers must treat it as read-only.
func (r Request) Headers() map[string]string { return r.headers }

func (r Request) WithTimeout(d time.Duration) Request {
	r.timeout = d
	return r
}

// Timeout returns the per-request timeout, falling back to DefaultTimeout
// when the descriptor was constructed as a zero value.
func (r Request) Timeout() time.Duration {
	if r.timeout <= 0 {
		return DefaultTimeout
	}
	return r.timeout
}

// WithBody sets a raw byte payload.
func (r Request) WithBody(body []byte) Request {
	r.body = body
	r.hasBody = true
	return r
}

// WithBodyText sets a text payload.
func (r Request) WithBodyText(body string) Request {
	return r.WithBody([]byte(body))
}

func (r Request) Body() []byte { return r.body }

func (r Request) HasBody() bool { return r.hasBody }

// WithMultipart sets a multipart form payload.
func (r Request) WithMultipart(form Form) Request {
	r.multipart = form
	r.hasMultipart = true
	return r
}

func (r Request) Multipart() Form { return r.multipart }

func (r Request) HasMultipart() bool { return r.hasMultipart }

// WithStatusCodes sets the exact allow-list of acceptable response codes.
// Calling it with no arguments records an explicit empty set, which the
// worker treats the same as no filter: the default [200,300) range.
func (r Request) WithStatusCodes(codes ...int) Request {
	r.statusCodes = append([]int{}, codes...)
	return r
}

// StatusCodes returns the acceptance list; nil means no filter was set.
func (r Request) StatusCodes() []int { return r.statusCodes }

// WithProxy sets a proxy URL applied to the client built for this request.
func (r Request) WithProxy(proxy string) Request {
	r.proxy = proxy
	return r
}

func (r Request) Proxy() string { return r.proxy }

// WithUserAgent sets the User-Agent applied at the client level.
func (r Request) WithUserAgent(ua string) Request {
	r.userAgent = ua
	return r
}

func (r Request) UserAgent() string { return r.userAgent }

// Compressed re-enables transparent gzip for this request.
func (r Request) Compressed() Request {
	r.gzip = true
	return r
}

// NoCompression disables transparent gzip for this request.
func (r Request) NoCompression() Request {
	r.gzip = false
	return r
}

func (r Request) IsCompressed() bool { return r.gzip }

// SkipTo turns the descriptor into a routing directive: the worker sets the
// context's next step to the given name and performs no network call.
func (r Request) SkipTo(step string) Request {
	r.skipTo = step
	return r
}

func (r Request) IsSkip() bool { return r.skipTo != "" }

func (r Request) SkipToStep() string { return r.skipTo }

// Build finalizes the descriptor. It rejects a descriptor carrying both a
// raw body and a multipart form, and a non-skip descriptor without a method
// and URL. Skip descriptors carry no request semantics and are not checked
// for a target.
func (r Request) Build() (Request, error) {
	if r.hasBody && r.hasMultipart {
		return Request{}, ErrBodyConflict
	}
	if !r.IsSkip() && (r.method == "" || r.url == "") {
		return Request{}, ErrMissingTarget
	}
	return r, nil
}
