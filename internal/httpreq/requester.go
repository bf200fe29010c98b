package httpreq

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/mimicbot/mimic/internal/request"
)

// Requester owns one persistent cookie jar and the current client settings.
// Transport-level options (proxy, gzip, user agent) cannot be changed on an
// already-built client, so a fresh client is built per request; the jar is
// the same object across builds, which is how cookies persist across steps.
type Requester struct {
	jar      *Jar
	settings Settings
}

// New returns a requester with an empty jar and default settings.
func New() *Requester {
	return &Requester{
		jar:      NewJar(),
		settings: NewSettings(),
	}
}

// Settings returns the mutable client settings.
func (r *Requester) Settings() *Settings { return &r.settings }

// Jar returns the cookie jar shared across client builds.
func (r *Requester) Jar() *Jar { return r.jar }

// BuildClient constructs a transport client from the current settings with
// the cookie jar attached. Responses are left unparsed so the caller decides
// when (and whether) to read the body.
func (r *Requester) BuildClient() (*resty.Client, error) {
	transport := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		DisableCompression: !r.settings.IsCompressed(),
	}
	if p := r.settings.Proxy(); p != "" {
		u, err := parseProxyURL(p)
		if err != nil {
			return nil, &ClientBuildError{Err: err}
		}
		transport.Proxy = http.ProxyURL(u)
	}

	c := resty.New()
	c.SetTransport(transport)
	c.SetCookieJar(r.jar)
	c.SetDoNotParseResponse(true)
	if ua := r.settings.UserAgent(); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	return c, nil
}

// BuildRequest builds a client from the current settings and attaches the
// descriptor's method target, timeout, headers and payload. The returned
// handle is send-ready; dispatch happens via resty's Execute.
func (r *Requester) BuildRequest(req request.Request) (*resty.Request, error) {
	if _, err := url.ParseRequestURI(req.URL()); err != nil {
		return nil, &RequestBuildError{Err: err}
	}
	c, err := r.BuildClient()
	if err != nil {
		return nil, &RequestBuildError{Err: err}
	}
	c.SetTimeout(req.Timeout())

	rr := c.R()
	if len(req.Headers()) > 0 {
		rr.SetHeaders(req.Headers())
	}
	switch {
	case req.HasBody():
		rr.SetBody(req.Body())
	case req.HasMultipart():
		form := req.Multipart()
		if len(form.Fields) > 0 {
			fields := make(map[string]string, len(form.Fields))
			for _, f := range form.Fields {
				fields[f.Name] = f.Value
			}
			rr.SetMultipartFormData(fields)
		}
		for _, f := range form.Files {
			ct := f.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			rr.SetMultipartField(f.Name, f.FileName, ct, bytes.NewReader(f.Data))
		}
	}
	return rr, nil
}

// ExportCookies serializes the jar contents to JSON. The jar itself is left
// untouched.
func (r *Requester) ExportCookies() ([]byte, error) {
	return r.jar.Export()
}

// parseProxyURL validates a proxy URL: it must parse and carry a supported
// scheme and a host.
func parseProxyURL(proxy string) (*url.URL, error) {
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy url %q has no host", proxy)
	}
	return u, nil
}
