package httpreq

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"
)

// Jar is a thread-safe cookie jar that can serialize its contents to JSON.
// Matching and expiry semantics are delegated to net/http/cookiejar; the jar
// additionally records every stored cookie per host so Export can produce a
// snapshot, which the standard jar does not expose.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	entries map[string]map[string]exportedCookie
}

type exportedCookie struct {
	Host     string    `json:"host"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	inner, _ := cookiejar.New(nil)
	return &Jar{
		inner:   inner,
		entries: make(map[string]map[string]exportedCookie),
	}
}

// SetCookies stores cookies for the URL and records them for export.
// A cookie with MaxAge < 0 deletes the recorded entry.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	host := u.Hostname()
	for _, ck := range cookies {
		if ck.MaxAge < 0 {
			if byName, ok := j.entries[host]; ok {
				delete(byName, ck.Name)
			}
			continue
		}
		byName, ok := j.entries[host]
		if !ok {
			byName = make(map[string]exportedCookie)
			j.entries[host] = byName
		}
		byName[ck.Name] = exportedCookie{
			Host:     host,
			Name:     ck.Name,
			Value:    ck.Value,
			Path:     ck.Path,
			Domain:   ck.Domain,
			Expires:  ck.Expires,
			Secure:   ck.Secure,
			HttpOnly: ck.HttpOnly,
		}
	}
	j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
}

// Cookies returns the cookies to send for the URL.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Export serializes the recorded cookies to JSON, ordered by host then name.
// It does not mutate the jar.
func (j *Jar) Export() ([]byte, error) {
	j.mu.Lock()
	out := make([]exportedCookie, 0)
	for _, byName := range j.entries {
		for _, ck := range byName {
			out = append(out, ck)
		}
	}
	j.mu.Unlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].Host != out[b].Host {
			return out[a].Host < out[b].Host
		}
		return out[a].Name < out[b].Name
	})
	return json.Marshal(out)
}
