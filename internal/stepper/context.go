package stepper

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/mimicbot/mimic/internal/httpreq"
	"github.com/mimicbot/mimic/internal/request"
	"github.com/tidwall/gjson"
)

// Context is the mutable per-run state shared across one worker's sequential
// step invocations: the current and next step names, the status-code policy
// in effect, the captured response body, the elapsed time of the most recent
// attempt and the owning HTTP requester. It is passed to a step's callbacks
// and is not safe for concurrent mutation.
type Context struct {
	requester    *httpreq.Requester
	request      request.Request
	hasRequest   bool
	handle       *resty.Request
	currentStep  string
	nextStep     string
	statusCodes  []int
	responseBody []byte
	hasBody      bool
	timeElapsed  int64
}

// NewContext returns a context owning a fresh HTTP requester.
func NewContext() *Context {
	return &Context{requester: httpreq.New()}
}

// Requester returns the owning HTTP requester.
func (c *Context) Requester() *httpreq.Requester { return c.requester }

// Request returns the descriptor of the current request, or the zero value
// before the first dispatch.
func (c *Context) Request() request.Request { return c.request }

// URL returns the URL of the current request.
func (c *Context) URL() string { return c.request.URL() }

// SetCurrentStep records the step currently executing.
func (c *Context) SetCurrentStep(step string) { c.currentStep = step }

// CurrentStep returns the name of the step currently executing, or "".
func (c *Context) CurrentStep() string { return c.currentStep }

// SetNextStep records the step to run next.
func (c *Context) SetNextStep(step string) { c.nextStep = step }

// NextStep returns the step to run next, or "" when no routing is pending.
func (c *Context) NextStep() string { return c.nextStep }

// ClearNextStep removes any pending routing.
func (c *Context) ClearNextStep() { c.nextStep = "" }

// SetStatusCodes sets the acceptance policy for the current call.
func (c *Context) SetStatusCodes(codes []int) { c.statusCodes = codes }

// StatusCodes returns the acceptance policy in effect; nil means none set.
func (c *Context) StatusCodes() []int { return c.statusCodes }

// SetTimeElapsed records the wall-clock duration of the most recent request
// attempt, in milliseconds.
func (c *Context) SetTimeElapsed(ms int64) { c.timeElapsed = ms }

// TimeElapsed returns the elapsed time of the most recent attempt in
// milliseconds.
func (c *Context) TimeElapsed() int64 { return c.timeElapsed }

// TimeElapsedString formats the elapsed time for logging.
func (c *Context) TimeElapsedString() string {
	return fmt.Sprintf("%d ms", c.timeElapsed)
}

// SetResponseBody stores the captured response bytes. A nil or empty slice
// still counts as a captured body.
func (c *Context) SetResponseBody(body []byte) {
	c.responseBody = body
	c.hasBody = true
}

// BodyBytes returns the captured response body. This is the base format;
// the other accessors are conveniences over it. It fails with ErrNoBody
// until a body has been captured.
func (c *Context) BodyBytes() ([]byte, error) {
	if !c.hasBody {
		return nil, ErrNoBody
	}
	return c.responseBody, nil
}

// BodyText returns the captured response body decoded as UTF-8 text.
func (c *Context) BodyText() (string, error) {
	if !c.hasBody {
		return "", ErrNoBody
	}
	return string(c.responseBody), nil
}

// BodyJSON decodes the captured response body into v. It fails with
// ErrNoBody when nothing has been captured and DecodeError on malformed
// JSON.
func (c *Context) BodyJSON(v any) error {
	if !c.hasBody {
		return ErrNoBody
	}
	if err := json.Unmarshal(c.responseBody, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// BodyPath evaluates a gjson path against the captured response body.
func (c *Context) BodyPath(path string) (gjson.Result, error) {
	if !c.hasBody {
		return gjson.Result{}, ErrNoBody
	}
	return gjson.GetBytes(c.responseBody, path), nil
}

// UpdateFromRequest pushes the descriptor's proxy, user agent and
// compression flag into the requester settings, stores its status codes as
// the active acceptance policy, builds a send-ready handle and records the
// descriptor as the current request. On failure the previous handle is
// dropped and the context is otherwise unchanged.
func (c *Context) UpdateFromRequest(req request.Request) error {
	s := c.requester.Settings()
	s.SetProxy(req.Proxy())
	s.SetUserAgent(req.UserAgent())
	s.SetCompression(req.IsCompressed())

	c.statusCodes = req.StatusCodes()

	handle, err := c.requester.BuildRequest(req)
	if err != nil {
		c.handle = nil
		return err
	}
	c.handle = handle
	c.request = req
	c.hasRequest = true
	return nil
}

// takeHandle returns the prepared send handle and clears it; a handle is
// consumed by exactly one dispatch.
func (c *Context) takeHandle() *resty.Request {
	h := c.handle
	c.handle = nil
	return h
}
