package httpreq

// Settings holds the client-level configuration applied at the next client
// build: proxy, user agent and transparent compression. Last write wins; a
// value takes effect when the requester builds its next client.
type Settings struct {
	proxy     string
	userAgent string
	gzip      bool
}

// NewSettings returns settings with compression enabled and no proxy or
// user-agent override.
func NewSettings() Settings {
	return Settings{gzip: true}
}

// SetProxy sets the proxy URL; an empty string removes the proxy.
func (s *Settings) SetProxy(proxy string) *Settings {
	s.proxy = proxy
	return s
}

func (s *Settings) Proxy() string { return s.proxy }

// SetUserAgent sets the User-Agent header applied at the client level; an
// empty string removes the override.
func (s *Settings) SetUserAgent(ua string) *Settings {
	s.userAgent = ua
	return s
}

func (s *Settings) UserAgent() string { return s.userAgent }

// EnableCompression turns transparent gzip back on.
func (s *Settings) EnableCompression() *Settings {
	s.gzip = true
	return s
}

// DisableCompression turns transparent gzip off.
func (s *Settings) DisableCompression() *Settings {
	s.gzip = false
	return s
}

// SetCompression sets the gzip flag directly.
func (s *Settings) SetCompression(on bool) *Settings {
	s.gzip = on
	return s
}

func (s *Settings) IsCompressed() bool { return s.gzip }
