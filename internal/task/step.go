package task

import (
	"strings"

	"github.com/mimicbot/mimic/internal/auth"
	"github.com/mimicbot/mimic/internal/common"
	"github.com/mimicbot/mimic/internal/request"
	"github.com/mimicbot/mimic/internal/stepper"
)

// Step adapts a declarative Doc to the step interface. Templated fields are
// rendered against the shared values bag when the request is produced, so a
// step defined once picks up values captured by earlier steps.
type Step struct {
	doc    Doc
	values *Values
	logger *common.Logger
}

// NewStep wraps a Doc. A nil values bag gets a fresh one.
func NewStep(doc Doc, values *Values) *Step {
	if values == nil {
		values = NewValues()
	}
	return &Step{
		doc:    doc,
		values: values,
		logger: common.GetLogger().WithComponent("task").WithStep(doc.Name),
	}
}

// Values returns the shared values bag.
func (s *Step) Values() *Values { return s.values }

func (s *Step) Name() string { return s.doc.Name }

// OnRequest materializes the declarative request. Rendering failures in the
// body keep the unrendered text; the descriptor build will surface anything
// structurally wrong.
func (s *Step) OnRequest() request.Request {
	spec := s.doc.Request
	if spec.SkipTo != "" {
		return request.Skip(spec.SkipTo)
	}

	r := request.New(strings.ToUpper(strings.TrimSpace(spec.Method)), s.values.Render(spec.URL))
	if d := spec.TimeoutDuration(); d > 0 {
		r = r.WithTimeout(d)
	}
	for name, value := range s.renderHeaders() {
		r = r.WithHeader(name, value)
	}
	if spec.Body != "" {
		body, err := s.values.RenderErr(spec.Body)
		if err != nil {
			s.logger.Warn("body template failed, sending unrendered body", "error", err)
			body = spec.Body
		}
		r = r.WithBodyText(body)
	}
	if spec.StatusCodes != nil {
		r = r.WithStatusCodes(spec.StatusCodes...)
	}
	if spec.Proxy != "" {
		r = r.WithProxy(s.values.Render(spec.Proxy))
	}
	if spec.UserAgent != "" {
		r = r.WithUserAgent(s.values.Render(spec.UserAgent))
	}
	if spec.Compression != nil && !*spec.Compression {
		r = r.NoCompression()
	}
	return r
}

// renderHeaders merges the header list, the raw header block and the
// auth_name injection, in that order. An explicit Authorization entry wins
// over auth_name.
func (s *Step) renderHeaders() map[string]string {
	hdrs := make(map[string]string)
	for k, v := range request.ParseHeaders(s.values.Render(s.doc.Request.HeaderText)) {
		hdrs[k] = v
	}
	for _, h := range s.doc.Request.Headers {
		if h.Name == "" {
			continue
		}
		hdrs[h.Name] = s.values.Render(h.Value)
	}
	if name := strings.TrimSpace(s.doc.Request.AuthName); name != "" {
		if _, exists := hdrs["Authorization"]; !exists {
			if tok, ok := auth.Token(name); ok {
				hdrs["Authorization"] = tok
			} else {
				s.logger.Warn("auth_name not found in token store", "auth_name", name)
			}
		}
	}
	return hdrs
}

func (s *Step) OnSuccess(ctx *stepper.Context) {
	if !s.capture(ctx) {
		// A required value is missing; do not route further.
		return
	}
	if s.doc.OnSuccess.NextStep != "" {
		ctx.SetNextStep(s.doc.OnSuccess.NextStep)
	}
}

func (s *Step) OnError(ctx *stepper.Context, err error) {
	s.logger.Warn("step failed", "error", err)
	if s.doc.OnError.NextStep != "" {
		ctx.SetNextStep(s.doc.OnError.NextStep)
	}
}

func (s *Step) OnTimeout(ctx *stepper.Context) {
	s.logger.Warn("step timed out", "elapsed", ctx.TimeElapsedString())
	if s.doc.OnTimeout.NextStep != "" {
		ctx.SetNextStep(s.doc.OnTimeout.NextStep)
	}
}

// capture evaluates the values_from mappings against the response body and
// reports whether routing may proceed. A path that does not resolve is
// skipped under the default policy; under "fail" it stops the flow.
func (s *Step) capture(ctx *stepper.Context) bool {
	mappings := s.doc.OnSuccess.ValuesFrom
	if len(mappings) == 0 {
		return true
	}
	policy := strings.ToLower(strings.TrimSpace(s.doc.OnSuccess.ValuesMissing))
	if policy == "" {
		policy = "skip"
	}
	for key, path := range mappings {
		p := strings.TrimSpace(path)
		if p == "" {
			continue
		}
		res, err := ctx.BodyPath(p)
		if err != nil || !res.Exists() {
			if policy == "fail" {
				s.logger.Error("required response value missing", "key", key, "path", p)
				return false
			}
			s.logger.Debug("response value not present", "key", key, "path", p)
			continue
		}
		s.values.Set(key, res.String())
	}
	return true
}

// RegisterAll wraps each doc as a Step sharing one values bag and inserts
// them into the registry.
func RegisterAll(reg *stepper.Registry, docs []Doc, values *Values) *Values {
	if values == nil {
		values = NewValues()
	}
	for _, d := range docs {
		reg.Insert(NewStep(d, values))
	}
	return values
}
