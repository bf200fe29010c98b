package task

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Header is a single header key-value pair.
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// RequestSpec is the declarative form of a step's request descriptor. String
// fields may contain Go templates rendered against the flow's values.
type RequestSpec struct {
	Method     string   `yaml:"method"`
	URL        string   `yaml:"url"`
	Headers    []Header `yaml:"headers"`
	HeaderText string   `yaml:"header_text"`
	// Timeout is a Go duration string, e.g. "5s".
	Timeout     string `yaml:"timeout"`
	Body        string `yaml:"body"`
	StatusCodes []int  `yaml:"status_codes"`
	SkipTo      string `yaml:"skip_to"`
	AuthName    string `yaml:"auth_name"`
	Proxy       string `yaml:"proxy"`
	UserAgent   string `yaml:"user_agent"`
	Compression *bool  `yaml:"compression"`
}

// TimeoutDuration parses the timeout field; zero means the default applies.
func (r RequestSpec) TimeoutDuration() time.Duration {
	s := strings.TrimSpace(r.Timeout)
	if s == "" {
		return 0
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return 0
}

// OutcomeSpec routes a flow after one of the three terminal outcomes and,
// on success, captures response values. ValuesFrom maps value keys to gjson
// paths evaluated against the response body.
type OutcomeSpec struct {
	NextStep   string            `yaml:"next_step"`
	ValuesFrom map[string]string `yaml:"values_from"`
	// ValuesMissing controls behavior when a values_from path does not
	// resolve: "skip" (default) ignores it, "fail" fails the capture.
	ValuesMissing string `yaml:"values_missing"`
}

// Doc is one declarative step definition.
type Doc struct {
	Name      string      `yaml:"name"`
	Request   RequestSpec `yaml:"request"`
	OnSuccess OutcomeSpec `yaml:"on_success"`
	OnError   OutcomeSpec `yaml:"on_error"`
	OnTimeout OutcomeSpec `yaml:"on_timeout"`
}

func (d *Doc) decodeYAMLTo(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	var tmp Doc
	if err := dec.Decode(&tmp); err != nil {
		return fmt.Errorf("failed to decode YAML step definition: %w", err)
	}
	if strings.TrimSpace(tmp.Name) == "" {
		return fmt.Errorf("step definition requires a name")
	}
	*d = tmp
	return nil
}

// DecodeYAML decodes a Doc from the provided reader into the receiver.
func (d *Doc) DecodeYAML(r io.Reader) error { return d.decodeYAMLTo(r) }

// LoadFromFile loads a Doc from a YAML file path into the receiver.
func (d *Doc) LoadFromFile(path string) error {
	clean := filepath.Clean(path)
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return d.decodeYAMLTo(f)
}

// LoadDir loads every .yaml/.yml file in dir, sorted by file name so flows
// list deterministically.
func LoadDir(dir string) ([]Doc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]Doc, 0, len(names))
	for _, name := range names {
		var d Doc
		if err := d.LoadFromFile(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}
