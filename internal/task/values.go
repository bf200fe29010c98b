package task

import (
	"bytes"
	"sync"
	"text/template"

	"github.com/mimicbot/mimic/internal/auth"
)

// Values is the flat key/value bag shared by the steps of one flow. Steps
// capture into it via values_from mappings and reference it from templated
// fields as {{.values.key}}. Acquired credentials are exposed as
// {{.auth.name}}.
type Values struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewValues() *Values {
	return &Values{m: make(map[string]string)}
}

func (v *Values) Set(key, value string) {
	if key == "" {
		return
	}
	v.mu.Lock()
	v.m[key] = value
	v.mu.Unlock()
}

func (v *Values) Get(key string) (string, bool) {
	v.mu.RLock()
	val, ok := v.m[key]
	v.mu.RUnlock()
	return val, ok
}

// Snapshot returns a copy of the current values.
func (v *Values) Snapshot() map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]string, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

func (v *Values) templateData() map[string]interface{} {
	return map[string]interface{}{
		"values": v.Snapshot(),
		"auth":   auth.Snapshot(),
	}
}

// Render applies Go template rendering to s against the current values. On
// a parse or execution failure the input is returned unchanged, so literal
// braces in non-templated fields pass through.
func (v *Values) Render(s string) string {
	if len(s) == 0 {
		return s
	}
	t, err := template.New("tmpl").Option("missingkey=error").Parse(s)
	if err != nil {
		return s
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, v.templateData()); err != nil {
		return s
	}
	return buf.String()
}

// RenderErr behaves like Render but surfaces parse and execution errors,
// including missing keys. Used for request bodies where a silent fallback
// would hide a broken flow.
func (v *Values) RenderErr(s string) (string, error) {
	if len(s) == 0 {
		return s, nil
	}
	t, err := template.New("tmpl").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, v.templateData()); err != nil {
		return "", err
	}
	return buf.String(), nil
}
