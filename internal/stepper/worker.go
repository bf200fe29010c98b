package stepper

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/mimicbot/mimic/internal/common"
	"github.com/mimicbot/mimic/internal/metrics"
)

// Worker drives one step at a time against its own context. The registry may
// be shared across workers; the context may not. There is no internal
// parallelism: TryStep runs synchronously and nothing is retried.
type Worker struct {
	id     string
	steps  *Registry
	ctx    *Context
	logger *common.Logger
}

// New returns a worker with its own registry and context.
func New() *Worker {
	return NewWithRegistry(NewRegistry())
}

// NewWithRegistry returns a worker using a shared registry. Each worker
// still owns its context and HTTP requester; one worker per concurrent
// logical session is the intended scaling unit.
func NewWithRegistry(steps *Registry) *Worker {
	id := uuid.NewString()
	return &Worker{
		id:     id,
		steps:  steps,
		ctx:    NewContext(),
		logger: common.GetLogger().WithComponent("worker").WithWorker(id),
	}
}

// ID returns the worker's run identifier.
func (w *Worker) ID() string { return w.id }

// AddStep registers a step in the worker's registry.
func (w *Worker) AddStep(step Step) { w.steps.Insert(step) }

// Steps returns the worker's registry.
func (w *Worker) Steps() *Registry { return w.steps }

// Context returns the worker's execution context.
func (w *Worker) Context() *Context { return w.ctx }

// TryStep executes the named step once: it resolves the step, produces its
// request descriptor, honors a skip directive, dispatches the request,
// validates the response status, captures the body and invokes exactly one
// of the step's callbacks. Every failure surfaces as a typed error after at
// most one callback; StepNotFoundError and request-build failures invoke no
// callback because no attempt was made.
func (w *Worker) TryStep(ctx context.Context, name string) error {
	step, ok := w.steps.Lookup(name)
	if !ok {
		metrics.ObserveStep(metrics.ResultNotFound)
		return &StepNotFoundError{Name: name}
	}

	req := step.OnRequest()
	if req.IsSkip() {
		// Pure routing directive: no network call, no callback.
		w.ctx.SetNextStep(req.SkipToStep())
		w.logger.Debug("step skipped", "step", name, "next_step", req.SkipToStep())
		metrics.ObserveStep(metrics.ResultSkip)
		return nil
	}

	if err := w.ctx.UpdateFromRequest(req); err != nil {
		w.logger.Error("unable to build request", "step", name, "error", err)
		metrics.ObserveStep(metrics.ResultBuildError)
		return err
	}
	w.ctx.SetCurrentStep(name)

	handle := w.ctx.takeHandle()
	handle.SetContext(ctx)

	logger := w.logger.WithRequest(req.Method(), req.URL())
	logger.Debug("dispatching step", "step", name)

	start := time.Now()
	resp, err := handle.Execute(req.Method(), req.URL())
	w.ctx.SetTimeElapsed(time.Since(start).Milliseconds())
	metrics.ObserveRequestDuration(time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			logger.Warn("step timed out", "step", name, "elapsed", w.ctx.TimeElapsedString())
			metrics.ObserveStep(metrics.ResultTimeout)
			step.OnTimeout(w.ctx)
			return ErrTimeout
		}
		logger.Error("step transport failure", "step", name, "error", err)
		metrics.ObserveStep(metrics.ResultTransportError)
		terr := &TransportError{Err: err}
		step.OnError(w.ctx, terr)
		return terr
	}

	body := resp.RawBody()
	if !acceptStatus(resp.StatusCode(), w.ctx.StatusCodes()) {
		// The body is never read on a status violation.
		if body != nil {
			_ = body.Close()
		}
		serr := &StatusCodeError{Code: resp.StatusCode(), Expected: w.ctx.StatusCodes()}
		logger.Warn("step rejected by status policy", "step", name, "status_code", resp.StatusCode())
		metrics.ObserveStep(metrics.ResultStatusRejected)
		step.OnError(w.ctx, serr)
		return serr
	}

	data, rerr := readAndClose(body)
	if rerr != nil {
		if isTimeout(rerr) {
			logger.Warn("step timed out reading body", "step", name)
			metrics.ObserveStep(metrics.ResultTimeout)
			step.OnTimeout(w.ctx)
			return ErrTimeout
		}
		logger.Error("step body read failure", "step", name, "error", rerr)
		metrics.ObserveStep(metrics.ResultTransportError)
		terr := &TransportError{Err: rerr}
		step.OnError(w.ctx, terr)
		return terr
	}

	w.ctx.SetResponseBody(data)
	// Clear any routing left over from a previous run so a step that forgets
	// to set next_step cannot inherit a stale value and loop.
	w.ctx.ClearNextStep()
	logger.Debug("step succeeded", "step", name,
		"status_code", resp.StatusCode(), "response_size", len(data), "elapsed", w.ctx.TimeElapsedString())
	metrics.ObserveStep(metrics.ResultSuccess)
	step.OnSuccess(w.ctx)
	return nil
}

func readAndClose(body io.ReadCloser) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// acceptStatus applies the three-way acceptance policy: a present, non-empty
// allow-list is exact membership; a present-but-empty list and an absent
// list both fall back to the default [200,300) range.
func acceptStatus(code int, allowed []int) bool {
	if len(allowed) == 0 {
		return code >= 200 && code < 300
	}
	for _, c := range allowed {
		if c == code {
			return true
		}
	}
	return false
}

// isTimeout reports whether a transport failure was caused by a timeout or
// an expired deadline, in which case it routes through the timeout path.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
