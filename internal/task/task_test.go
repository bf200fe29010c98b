package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const loginDoc = `
name: Login
request:
  method: POST
  url: https://portal.example/login
  headers:
    - name: Content-Type
      value: application/json
  timeout: 5s
  body: '{"user":"bot"}'
  status_codes: [200, 302]
on_success:
  next_step: Fetch
  values_from:
    session: data.session
on_error:
  next_step: Recover
`

func TestDoc_DecodeYAML(t *testing.T) {
	var d Doc
	if err := d.DecodeYAML(strings.NewReader(loginDoc)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Name != "Login" || d.Request.Method != "POST" {
		t.Fatalf("unexpected doc: %+v", d)
	}
	if d.Request.TimeoutDuration() != 5*time.Second {
		t.Fatalf("timeout not parsed: %v", d.Request.Timeout)
	}
	if len(d.Request.StatusCodes) != 2 || d.Request.StatusCodes[1] != 302 {
		t.Fatalf("status codes not parsed: %v", d.Request.StatusCodes)
	}
	if d.OnSuccess.NextStep != "Fetch" || d.OnSuccess.ValuesFrom["session"] != "data.session" {
		t.Fatalf("on_success not parsed: %+v", d.OnSuccess)
	}
	if d.OnError.NextStep != "Recover" {
		t.Fatalf("on_error not parsed: %+v", d.OnError)
	}
}

func TestDoc_DecodeRequiresName(t *testing.T) {
	var d Doc
	err := d.DecodeYAML(strings.NewReader("request:\n  method: GET\n  url: https://example.com\n"))
	if err == nil {
		t.Fatalf("nameless doc should be rejected")
	}
}

func TestDoc_SkipOnly(t *testing.T) {
	var d Doc
	if err := d.DecodeYAML(strings.NewReader("name: Gate\nrequest:\n  skip_to: Landing\n")); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Request.SkipTo != "Landing" {
		t.Fatalf("skip_to not parsed: %+v", d.Request)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("02_fetch.yaml", "name: Fetch\nrequest:\n  method: GET\n  url: https://example.com/f\n")
	write("01_login.yml", "name: Login\nrequest:\n  method: POST\n  url: https://example.com/l\n")
	write("notes.txt", "not a step")

	docs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	// Sorted by file name, not by step name.
	if docs[0].Name != "Login" || docs[1].Name != "Fetch" {
		t.Fatalf("unexpected order: %s, %s", docs[0].Name, docs[1].Name)
	}
}

func TestLoadDir_BadDoc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(":\n :bad"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatalf("broken yaml should fail the load")
	}
}
