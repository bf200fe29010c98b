package stepper

import (
	"context"
	"errors"
	"fmt"

	"github.com/mimicbot/mimic/internal/common"
	"github.com/mimicbot/mimic/internal/metrics"
	"github.com/mimicbot/mimic/internal/store"
)

// DefaultMaxSteps bounds a flow so broken routing cannot loop forever.
const DefaultMaxSteps = 100

// RunResult is the outcome of one step invocation within a flow.
type RunResult struct {
	Step      string
	Err       error
	ElapsedMS int64
}

// Runner drives a worker from a start step, following the context's
// next-step routing until no step is pending. Each invocation may be
// recorded to an optional history store. The runner never retries; a
// failing step ends the flow unless FollowErrorRoutes is set and the
// step's error or timeout callback routed somewhere.
type Runner struct {
	Worker *Worker
	// Store, when set, records every step invocation.
	Store store.Store
	// SaveResponseBody stores captured bodies alongside run records.
	SaveResponseBody bool
	// FollowErrorRoutes continues the flow after a failed step when its
	// callback set a next step.
	FollowErrorRoutes bool
	// MaxSteps bounds the flow; 0 means DefaultMaxSteps.
	MaxSteps int
}

// Run executes the flow beginning at start. It returns the per-step results
// and the first error that ended the flow, if any.
func (r *Runner) Run(ctx context.Context, start string) ([]RunResult, error) {
	maxSteps := r.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	logger := common.GetLogger().WithComponent("runner").WithWorker(r.Worker.ID())

	var results []RunResult
	name := start
	for i := 0; i < maxSteps && name != ""; i++ {
		err := r.Worker.TryStep(ctx, name)
		results = append(results, RunResult{
			Step:      name,
			Err:       err,
			ElapsedMS: r.Worker.Context().TimeElapsed(),
		})
		r.record(name, err)

		next := r.Worker.Context().NextStep()
		if err != nil {
			if r.FollowErrorRoutes && next != "" && next != name {
				logger.Warn("continuing flow after failed step", "step", name, "next_step", next, "error", err)
				name = next
				continue
			}
			logger.Error("flow stopped by failed step", "step", name, "error", err)
			return results, err
		}
		name = next
	}
	if name != "" {
		err := fmt.Errorf("stepper: flow exceeded %d steps, next step %q", maxSteps, name)
		logger.Error("flow aborted", "error", err)
		return results, err
	}
	logger.Info("flow finished", "steps_run", len(results))
	return results, nil
}

func (r *Runner) record(step string, err error) {
	if r.Store == nil {
		return
	}
	run := store.Run{
		WorkerID:  r.Worker.ID(),
		Step:      step,
		Outcome:   outcomeOf(err),
		Failed:    err != nil,
		ElapsedMS: r.Worker.Context().TimeElapsed(),
	}
	if r.SaveResponseBody && err == nil {
		if body, berr := r.Worker.Context().BodyText(); berr == nil {
			run.Body = &body
		}
	}
	if rerr := r.Store.RecordRun(run); rerr != nil {
		common.GetLogger().WithComponent("runner").Warn("unable to record run", "step", step, "error", rerr)
	}
}

// outcomeOf maps a TryStep error to a stable outcome label shared with the
// metrics package.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrTimeout):
		return metrics.ResultTimeout
	default:
		var notFound *StepNotFoundError
		var status *StatusCodeError
		var transport *TransportError
		switch {
		case errors.As(err, &notFound):
			return metrics.ResultNotFound
		case errors.As(err, &status):
			return metrics.ResultStatusRejected
		case errors.As(err, &transport):
			return metrics.ResultTransportError
		}
		return metrics.ResultBuildError
	}
}
