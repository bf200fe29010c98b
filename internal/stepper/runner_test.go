package stepper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mimicbot/mimic/internal/request"
	"github.com/mimicbot/mimic/internal/store"
)

func TestRunner_FollowsRouting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	w := New()
	w.AddStep(&stubStep{name: "A", req: getReq(srv.URL + "/a"), onSuccess: func(ctx *Context) { ctx.SetNextStep("B") }})
	w.AddStep(&stubStep{name: "B", req: getReq(srv.URL + "/b"), onSuccess: func(ctx *Context) { ctx.SetNextStep("Finish") }})
	w.AddStep(&stubStep{name: "Finish", req: getReq(srv.URL + "/done")})

	r := &Runner{Worker: w}
	results, err := r.Run(context.Background(), "A")
	if err != nil {
		t.Fatalf("flow failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"A", "B", "Finish"} {
		if results[i].Step != want {
			t.Fatalf("result %d: expected step %q, got %q", i, want, results[i].Step)
		}
		if results[i].Err != nil {
			t.Fatalf("result %d: unexpected error %v", i, results[i].Err)
		}
	}
}

func TestRunner_StopsOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(500)
			return
		}
	}))
	defer srv.Close()

	w := New()
	w.AddStep(&stubStep{name: "A", req: getReq(srv.URL + "/ok"), onSuccess: func(ctx *Context) { ctx.SetNextStep("B") }})
	w.AddStep(&stubStep{name: "B", req: getReq(srv.URL + "/bad"), onSuccess: func(ctx *Context) { ctx.SetNextStep("C") }})
	w.AddStep(&stubStep{name: "C", req: getReq(srv.URL + "/ok")})

	r := &Runner{Worker: w}
	results, err := r.Run(context.Background(), "A")
	var sce *StatusCodeError
	if !errors.As(err, &sce) {
		t.Fatalf("expected StatusCodeError, got %v", err)
	}
	if len(results) != 2 || results[1].Step != "B" {
		t.Fatalf("flow should stop at B: %+v", results)
	}
}

func TestRunner_FollowErrorRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(503)
		}
	}))
	defer srv.Close()

	w := New()
	w.AddStep(&stubStep{
		name: "Flaky",
		req:  getReq(srv.URL + "/bad"),
		onError: func(ctx *Context, err error) {
			ctx.SetNextStep("Recover")
		},
	})
	w.AddStep(&stubStep{name: "Recover", req: getReq(srv.URL + "/ok")})

	r := &Runner{Worker: w, FollowErrorRoutes: true}
	results, err := r.Run(context.Background(), "Flaky")
	if err != nil {
		t.Fatalf("error route should recover the flow: %v", err)
	}
	if len(results) != 2 || results[0].Err == nil || results[1].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunner_MaxStepsGuard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	w := New()
	// Loop deliberately routes back to itself.
	w.AddStep(&stubStep{name: "Loop", req: getReq(srv.URL), onSuccess: func(ctx *Context) { ctx.SetNextStep("Loop") }})

	r := &Runner{Worker: w, MaxSteps: 5}
	results, err := r.Run(context.Background(), "Loop")
	if err == nil {
		t.Fatalf("a routing loop must abort the flow")
	}
	if len(results) != 5 {
		t.Fatalf("expected the guard to stop after 5 steps, got %d", len(results))
	}
}

func TestRunner_RecordsRunsToStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(404)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	st, err := store.Config{Driver: store.DriverSqlite}.Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	w := New()
	w.AddStep(&stubStep{name: "Fetch", req: getReq(srv.URL + "/ok"), onSuccess: func(ctx *Context) { ctx.SetNextStep("Broken") }})
	w.AddStep(&stubStep{name: "Broken", req: getReq(srv.URL + "/bad")})

	r := &Runner{Worker: w, Store: st, SaveResponseBody: true}
	_, runErr := r.Run(context.Background(), "Fetch")
	if runErr == nil {
		t.Fatalf("flow should end in a status rejection")
	}

	runs, err := st.ListRuns(w.ID())
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(runs))
	}
	if runs[0].Step != "Fetch" || runs[0].Failed || runs[0].Outcome != "success" {
		t.Fatalf("unexpected first run: %+v", runs[0])
	}
	if runs[0].Body == nil || *runs[0].Body != "payload" {
		t.Fatalf("response body not saved: %+v", runs[0])
	}
	if runs[1].Step != "Broken" || !runs[1].Failed || runs[1].Outcome != "status_rejected" {
		t.Fatalf("unexpected second run: %+v", runs[1])
	}
}

func TestRunner_SkipStepsRouteWithoutDispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	w := New()
	w.AddStep(&stubStep{name: "Gate", req: request.Skip("Landing")})
	w.AddStep(&stubStep{name: "Landing", req: getReq(srv.URL)})

	r := &Runner{Worker: w}
	results, err := r.Run(context.Background(), "Gate")
	if err != nil {
		t.Fatalf("flow failed: %v", err)
	}
	if len(results) != 2 || results[0].Step != "Gate" || results[1].Step != "Landing" {
		t.Fatalf("skip routing not followed: %+v", results)
	}
}
