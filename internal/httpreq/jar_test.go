package httpreq

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestJar_StoreAndReturn(t *testing.T) {
	j := NewJar()
	u := mustURL(t, "http://example.com/login")
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc"}})

	got := j.Cookies(mustURL(t, "http://example.com/account"))
	if len(got) != 1 || got[0].Name != "session" || got[0].Value != "abc" {
		t.Fatalf("unexpected cookies: %v", got)
	}
}

func TestJar_ExportJSON(t *testing.T) {
	j := NewJar()
	j.SetCookies(mustURL(t, "http://b.example.com/"), []*http.Cookie{{Name: "b", Value: "2"}})
	j.SetCookies(mustURL(t, "http://a.example.com/"), []*http.Cookie{
		{Name: "z", Value: "26"},
		{Name: "a", Value: "1"},
	})

	data, err := j.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 cookies, got %d", len(out))
	}
	// Ordered by host, then name.
	if out[0]["host"] != "a.example.com" || out[0]["name"] != "a" {
		t.Fatalf("unexpected first entry: %v", out[0])
	}
	if out[2]["host"] != "b.example.com" {
		t.Fatalf("unexpected last entry: %v", out[2])
	}
}

func TestJar_ExportIsSideEffectFree(t *testing.T) {
	j := NewJar()
	u := mustURL(t, "http://example.com/")
	j.SetCookies(u, []*http.Cookie{{Name: "keep", Value: "1"}})

	if _, err := j.Export(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := j.Cookies(u); len(got) != 1 {
		t.Fatalf("export must not drop cookies, got %v", got)
	}
}

func TestJar_DeleteRemovesExportEntry(t *testing.T) {
	j := NewJar()
	u := mustURL(t, "http://example.com/")
	j.SetCookies(u, []*http.Cookie{{Name: "gone", Value: "1"}})
	j.SetCookies(u, []*http.Cookie{{Name: "gone", Value: "", MaxAge: -1}})

	data, err := j.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var out []map[string]any
	_ = json.Unmarshal(data, &out)
	if len(out) != 0 {
		t.Fatalf("deleted cookie should not be exported: %v", out)
	}
}

func TestJar_ConcurrentAccess(t *testing.T) {
	j := NewJar()
	u := mustURL(t, "http://example.com/")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			j.SetCookies(u, []*http.Cookie{{Name: "c", Value: "v"}})
			_ = j.Cookies(u)
			_, _ = j.Export()
		}(i)
	}
	wg.Wait()
}
