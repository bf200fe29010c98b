package mimic

import (
	"context"

	"github.com/mimicbot/mimic/internal/auth"
	"github.com/mimicbot/mimic/internal/httpreq"
	"github.com/mimicbot/mimic/internal/request"
	"github.com/mimicbot/mimic/internal/stepper"
	"github.com/mimicbot/mimic/internal/store"
	"github.com/mimicbot/mimic/internal/task"
)

// Re-export commonly used types for the public API.

// Request is the immutable descriptor of one step's HTTP call.
type Request = request.Request

// Form is a multipart form payload for a Request.
type Form = request.Form

// NewRequest starts a descriptor for the given method and URL.
func NewRequest(method, url string) Request { return request.New(method, url) }

// SkipRequest returns a pure routing descriptor targeting the named step.
func SkipRequest(step string) Request { return request.Skip(step) }

// NewForm returns an empty multipart form.
func NewForm() Form { return request.NewForm() }

// ParseHeaders parses a raw header block, one "Name: value" pair per line.
func ParseHeaders(text string) map[string]string { return request.ParseHeaders(text) }

// Step is the behavior contract of one workflow step.
type Step = stepper.Step

// Registry holds steps by name and may be shared across workers.
type Registry = stepper.Registry

// NewRegistry returns an empty step registry.
func NewRegistry() *Registry { return stepper.NewRegistry() }

// Worker drives steps one at a time against its own context.
type Worker = stepper.Worker

// NewWorker returns a worker with its own registry and context.
func NewWorker() *Worker { return stepper.New() }

// NewWorkerWithRegistry returns a worker sharing the given registry.
func NewWorkerWithRegistry(reg *Registry) *Worker { return stepper.NewWithRegistry(reg) }

// Context is the per-run state passed to step callbacks.
type Context = stepper.Context

// Runner follows next-step routing across a whole flow.
type Runner = stepper.Runner

// RunResult is the outcome of one step invocation within a flow.
type RunResult = stepper.RunResult

// Requester owns the cookie jar and client settings of one worker.
type Requester = httpreq.Requester

// Error taxonomy of step execution.
var (
	ErrTimeout = stepper.ErrTimeout
	ErrNoBody  = stepper.ErrNoBody
)

type StepNotFoundError = stepper.StepNotFoundError

type TransportError = stepper.TransportError

type StatusCodeError = stepper.StatusCodeError

type DecodeError = stepper.DecodeError

type RequestBuildError = httpreq.RequestBuildError

type ClientBuildError = httpreq.ClientBuildError

// Store persists step-run history.
type Store = store.Store

// StoreConfig selects and configures a store backend.
type StoreConfig = store.Config

// OpenStore opens and initializes the configured run-history store.
func OpenStore(c StoreConfig) (Store, error) { return c.Open() }

// AuthMethod is the plugin interface for credential providers.
type AuthMethod = auth.Method

// AuthFactory builds an AuthMethod from a loosely-typed spec map.
type AuthFactory = auth.Factory

// RegisterAuthProvider registers a custom credential provider type.
func RegisterAuthProvider(typ string, f AuthFactory) { auth.Register(typ, f) }

// AcquireAuth acquires a credential value via a registered provider and
// stores it under the given logical name for declarative steps.
func AcquireAuth(ctx context.Context, typ, name string, spec map[string]interface{}) (string, error) {
	return auth.AcquireAndStore(ctx, typ, name, spec)
}

// AuthToken looks up a previously acquired credential by name.
func AuthToken(name string) (string, bool) { return auth.Token(name) }

// StepDoc is the declarative YAML form of one step.
type StepDoc = task.Doc

// Values is the shared key/value bag of one declarative flow.
type Values = task.Values

// NewValues returns an empty values bag.
func NewValues() *Values { return task.NewValues() }

// LoadStepDocs loads every step definition in a directory, sorted by file
// name.
func LoadStepDocs(dir string) ([]StepDoc, error) { return task.LoadDir(dir) }

// RegisterStepDocs wraps the docs as steps sharing one values bag and
// inserts them into the registry. A nil bag gets a fresh one, which is
// returned either way.
func RegisterStepDocs(reg *Registry, docs []StepDoc, values *Values) *Values {
	return task.RegisterAll(reg, docs, values)
}
