package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calmeet/calmeet/internal/classify"
	"github.com/calmeet/calmeet/internal/logging"
	"github.com/calmeet/calmeet/internal/validate"
)

// Handler executes one tool against the provider. The token is a bearer
// access token already validated by the auth manager; args have passed the
// tool's schema.
type Handler func(ctx context.Context, token string, args validate.Args) (any, error)

// Descriptor is one entry in the tool catalog.
type Descriptor struct {
	Name        string
	Description string
	// Category is the provider service the tool belongs to, "calendar" or
	// "meet". Used as the service label on metrics.
	Category string
	// Operation is the coarse operation type (list, get, create, update,
	// delete, end, query). Used as the operation label on metrics.
	Operation string
	// ReadOnly marks tools that never mutate provider state. Mutating
	// tools are rejected when the server runs in read-only mode.
	ReadOnly bool
	Schema   *validate.Schema
	Handler  Handler
}

// Registry holds the tool catalog. Registration order is preserved so
// tools/list output is stable.
type Registry struct {
	order  []string
	byName map[string]*Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register adds a descriptor to the registry. Duplicate names are a
// programming error.
func (r *Registry) Register(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool descriptor has no name")
	}
	if d.Schema == nil || d.Handler == nil {
		return fmt.Errorf("tool %q: descriptor requires both schema and handler", d.Name)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("tool %q registered twice", d.Name)
	}
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get looks up a descriptor by tool name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// TokenSource supplies access tokens for tool execution. Implemented by
// the auth Manager.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context, stale string) (string, error)
}

// Recorder receives one metrics event per tool call. Implemented by the
// instrumentation metrics.
type Recorder interface {
	RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration)
	RecordToolError(ctx context.Context, toolName, kind string)
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordToolInvocation(context.Context, string, string, time.Duration) {}
func (noopRecorder) RecordToolError(context.Context, string, string)                     {}
func (noopRecorder) RecordGoogleAPIOperation(context.Context, string, string, string, time.Duration) {
}

// Envelope is the uniform result of every tool call. Exactly one of Data
// and Error is populated.
type Envelope struct {
	OK    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Error *classify.Error `json:"error,omitempty"`
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(d *Dispatcher) { d.recorder = recorder }
}

// WithReadOnly puts the dispatcher in read-only mode: tools whose
// descriptor is not marked ReadOnly are rejected before validation.
func WithReadOnly(readOnly bool) Option {
	return func(d *Dispatcher) { d.readOnly = readOnly }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher routes tool calls through validation, token acquisition, and
// the provider adapter, and classifies every failure. Safe for concurrent
// use.
type Dispatcher struct {
	registry *Registry
	tokens   TokenSource
	logger   *slog.Logger
	recorder Recorder
	readOnly bool
	now      func() time.Time

	mu              sync.RWMutex
	lastProviderErr *classify.Error
}

// New creates a Dispatcher over the given registry and token source.
func New(registry *Registry, tokens TokenSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		tokens:   tokens,
		logger:   slog.Default(),
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReadOnly reports whether mutating tools are gated off.
func (d *Dispatcher) ReadOnly() bool {
	return d.readOnly
}

// LastProviderError returns the most recent provider-side failure, for the
// detailed health endpoint. Nil when no provider call has failed yet.
func (d *Dispatcher) LastProviderError() *classify.Error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastProviderErr
}

// Dispatch executes one tool call end to end. Unknown tools and invalid
// arguments are rejected before any token or network activity. A call that
// fails with an authentication error despite a cached token gets exactly
// one forced refresh followed by one retry; retriable provider failures
// are signaled, never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw map[string]any) Envelope {
	start := d.now()

	desc, ok := d.registry.Get(name)
	if !ok {
		return d.fail(ctx, name, start, classify.UnknownTool(name))
	}

	if d.readOnly && !desc.ReadOnly {
		return d.fail(ctx, name, start, &classify.Error{
			Kind:    classify.KindPermissionDenied,
			Message: fmt.Sprintf("tool %q mutates provider state and the server is in read-only mode: restart with --yolo to enable it", name),
		})
	}

	args, verr := desc.Schema.Validate(raw)
	if verr != nil {
		return d.fail(ctx, name, start, verr)
	}

	token, err := d.tokens.Token(ctx)
	if err != nil {
		return d.fail(ctx, name, start, classify.Classify(err))
	}

	result, err := d.invoke(ctx, desc, token, args)
	if err != nil {
		classified := classify.Classify(err)
		if classified.Kind == classify.KindAuthExpired {
			// The cached token was rejected by the provider. Refresh once
			// and retry; a second auth failure surfaces as-is.
			fresh, rerr := d.tokens.ForceRefresh(ctx, token)
			if rerr != nil {
				return d.failProvider(ctx, desc, start, classify.Classify(rerr))
			}
			result, err = d.invoke(ctx, desc, fresh, args)
			if err != nil {
				return d.failProvider(ctx, desc, start, classify.Classify(err))
			}
		} else {
			return d.failProvider(ctx, desc, start, classified)
		}
	}

	duration := d.now().Sub(start)
	d.recorder.RecordToolInvocation(ctx, name, logging.StatusSuccess, duration)
	d.logger.Info("tool call completed",
		logging.Tool(name),
		logging.Status(logging.StatusSuccess),
		slog.Duration(logging.KeyDuration, duration))
	return Envelope{OK: true, Data: result}
}

// invoke runs the handler and records the provider operation metric.
func (d *Dispatcher) invoke(ctx context.Context, desc *Descriptor, token string, args validate.Args) (any, error) {
	opStart := d.now()
	result, err := desc.Handler(ctx, token, args)
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	d.recorder.RecordGoogleAPIOperation(ctx, desc.Category, desc.Operation, status, d.now().Sub(opStart))
	return result, err
}

// fail finalizes a call that never produced a provider-side failure
// (unknown tool, validation, token acquisition).
func (d *Dispatcher) fail(ctx context.Context, name string, start time.Time, cerr *classify.Error) Envelope {
	duration := d.now().Sub(start)
	d.recorder.RecordToolInvocation(ctx, name, logging.StatusError, duration)
	d.recorder.RecordToolError(ctx, name, string(cerr.Kind))
	d.logger.Warn("tool call failed",
		logging.Tool(name),
		logging.Status(logging.StatusError),
		logging.ErrorKind(string(cerr.Kind)),
		slog.Duration(logging.KeyDuration, duration),
		slog.String(logging.KeyError, cerr.Message))
	return Envelope{Error: cerr}
}

// failProvider additionally remembers the failure for the health signal.
func (d *Dispatcher) failProvider(ctx context.Context, desc *Descriptor, start time.Time, cerr *classify.Error) Envelope {
	d.mu.Lock()
	d.lastProviderErr = cerr
	d.mu.Unlock()
	return d.fail(ctx, desc.Name, start, cerr)
}
