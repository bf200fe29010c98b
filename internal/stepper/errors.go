package stepper

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by TryStep when the request attempt timed out.
// The step's OnTimeout callback has already been invoked when it surfaces.
var ErrTimeout = errors.New("stepper: request timed out")

// ErrNoBody is returned by the context body accessors before any response
// body has been captured.
var ErrNoBody = errors.New("stepper: no body has been set from the request")

// StepNotFoundError reports a TryStep call for a name missing from the
// registry. No context mutation and no callback happened.
type StepNotFoundError struct {
	Name string
}

func (e *StepNotFoundError) Error() string {
	return "stepper: step not found: " + e.Name
}

// TransportError wraps a send or body-read failure from the HTTP transport.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "stepper: transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCodeError reports a response code outside the acceptance policy in
// effect for the step. Expected holds the explicit allow-list, which may be
// empty when the default [200,300) range was enforced.
type StatusCodeError struct {
	Code     int
	Expected []int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("stepper: unexpected status code %d, expected one of %v", e.Code, e.Expected)
}

// DecodeError wraps a failure to decode a captured response body into a
// typed structure.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "stepper: unable to decode response body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }
