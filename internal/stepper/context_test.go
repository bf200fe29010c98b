package stepper

import (
	"errors"
	"net/http"
	"testing"

	"github.com/mimicbot/mimic/internal/httpreq"
	"github.com/mimicbot/mimic/internal/request"
)

func TestContext_StepAccessors(t *testing.T) {
	ctx := NewContext()
	if ctx.CurrentStep() != "" || ctx.NextStep() != "" {
		t.Fatalf("fresh context should have no step names")
	}
	ctx.SetCurrentStep("Login")
	ctx.SetNextStep("Fetch")
	if ctx.CurrentStep() != "Login" || ctx.NextStep() != "Fetch" {
		t.Fatalf("unexpected step names: %q %q", ctx.CurrentStep(), ctx.NextStep())
	}
	ctx.ClearNextStep()
	if ctx.NextStep() != "" {
		t.Fatalf("next step should be cleared")
	}
}

func TestContext_TimeElapsed(t *testing.T) {
	ctx := NewContext()
	ctx.SetTimeElapsed(123)
	if ctx.TimeElapsed() != 123 {
		t.Fatalf("unexpected elapsed: %d", ctx.TimeElapsed())
	}
	if ctx.TimeElapsedString() != "123 ms" {
		t.Fatalf("unexpected elapsed string: %q", ctx.TimeElapsedString())
	}
}

func TestContext_BodyAccessorsBeforeCapture(t *testing.T) {
	ctx := NewContext()
	if _, err := ctx.BodyBytes(); !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
	if _, err := ctx.BodyText(); !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
	var v map[string]any
	if err := ctx.BodyJSON(&v); !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
	if _, err := ctx.BodyPath("name"); !errors.Is(err, ErrNoBody) {
		t.Fatalf("expected ErrNoBody, got %v", err)
	}
}

func TestContext_BodyAccessors(t *testing.T) {
	ctx := NewContext()
	ctx.SetResponseBody([]byte(`{"name": "test"}`))

	b, err := ctx.BodyBytes()
	if err != nil || string(b) != `{"name": "test"}` {
		t.Fatalf("unexpected bytes: %q %v", b, err)
	}
	text, err := ctx.BodyText()
	if err != nil || text != `{"name": "test"}` {
		t.Fatalf("unexpected text: %q %v", text, err)
	}
	var v struct {
		Name string `json:"name"`
	}
	if err := ctx.BodyJSON(&v); err != nil || v.Name != "test" {
		t.Fatalf("unexpected json: %+v %v", v, err)
	}
	res, err := ctx.BodyPath("name")
	if err != nil || res.String() != "test" {
		t.Fatalf("unexpected path result: %q %v", res.String(), err)
	}
}

func TestContext_BodyJSONMalformed(t *testing.T) {
	ctx := NewContext()
	ctx.SetResponseBody([]byte(`{"name": "test"`))
	var v map[string]any
	err := ctx.BodyJSON(&v)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestContext_EmptyBodyCountsAsCaptured(t *testing.T) {
	ctx := NewContext()
	ctx.SetResponseBody(nil)
	if _, err := ctx.BodyBytes(); err != nil {
		t.Fatalf("empty body should still be readable: %v", err)
	}
}

func TestContext_UpdateFromRequest(t *testing.T) {
	ctx := NewContext()
	req, err := request.New(http.MethodGet, "http://example.com").
		WithProxy("http://secure.example:8080").
		WithUserAgent("mimic").
		NoCompression().
		WithStatusCodes(200, 302).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := ctx.UpdateFromRequest(req); err != nil {
		t.Fatalf("update: %v", err)
	}

	s := ctx.Requester().Settings()
	if s.Proxy() != "http://secure.example:8080" || s.UserAgent() != "mimic" || s.IsCompressed() {
		t.Fatalf("settings not pushed from descriptor: %+v", s)
	}
	if codes := ctx.StatusCodes(); len(codes) != 2 || codes[0] != 200 {
		t.Fatalf("status policy not stored: %v", codes)
	}
	if ctx.handle == nil {
		t.Fatalf("send handle should be prepared")
	}
	if ctx.URL() != "http://example.com" {
		t.Fatalf("descriptor not stored: %q", ctx.URL())
	}
}

func TestContext_UpdateFromRequestFailureUnsetsHandle(t *testing.T) {
	ctx := NewContext()
	good, _ := request.New(http.MethodGet, "http://example.com").Build()
	if err := ctx.UpdateFromRequest(good); err != nil {
		t.Fatalf("update: %v", err)
	}

	bad := request.New(http.MethodGet, "://broken")
	err := ctx.UpdateFromRequest(bad)
	var rbe *httpreq.RequestBuildError
	if !errors.As(err, &rbe) {
		t.Fatalf("expected RequestBuildError, got %v", err)
	}
	if ctx.handle != nil {
		t.Fatalf("handle must be unset after a failed update")
	}
	// The previous descriptor is untouched.
	if ctx.URL() != "http://example.com" {
		t.Fatalf("previous request should be kept: %q", ctx.URL())
	}
}

func TestContext_TakeHandleConsumes(t *testing.T) {
	ctx := NewContext()
	req, _ := request.New(http.MethodGet, "http://example.com").Build()
	if err := ctx.UpdateFromRequest(req); err != nil {
		t.Fatalf("update: %v", err)
	}
	if h := ctx.takeHandle(); h == nil {
		t.Fatalf("expected a prepared handle")
	}
	if h := ctx.takeHandle(); h != nil {
		t.Fatalf("handle must be consumed by take")
	}
}
