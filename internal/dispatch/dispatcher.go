// Package dispatch holds the tool registration table and runs tool calls:
// argument validation, error classification, logging and metrics.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roivaz/drata-compliance-mcp/internal/logging"
)

// Handler runs one tool call with validated arguments.
type Handler func(ctx context.Context, args Args) (any, error)

// Tool is one entry of the registration table. Every tool is read-only.
type Tool struct {
	Name        string
	Title       string
	Description string
	Params      []Param
	Handler     Handler
}

// Observer receives one sample per dispatched call. outcome is "ok" or the
// lower-case error kind.
type Observer interface {
	ObserveToolCall(tool, outcome string, elapsed time.Duration)
}

type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds tools to the table. Registering a name twice is an error.
func (r *Registry) Register(tools ...Tool) error {
	for _, t := range tools {
		if t.Name == "" || t.Handler == nil {
			return fmt.Errorf("tool %q: name and handler are required", t.Name)
		}
		if _, dup := r.tools[t.Name]; dup {
			return fmt.Errorf("tool %q registered twice", t.Name)
		}
		r.tools[t.Name] = t
	}
	return nil
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns the registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type Dispatcher struct {
	registry *Registry
	log      logging.Logger
	observer Observer
}

type Option func(*Dispatcher)

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

func NewDispatcher(registry *Registry, log logging.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: registry, log: log.WithName("dispatch")}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch validates args against the tool's parameters and runs its handler.
// Every failure is returned as a *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	start := time.Now()
	log := d.log.WithValues("tool", name, "call_id", uuid.NewString())

	result, err := d.run(ctx, name, args)

	outcome := "ok"
	if err != nil {
		outcome = string(err.Kind)
		log.Info("tool call failed", "error_code", err.Kind, "error", err.Message(), "elapsed", time.Since(start))
	} else {
		log.Debug("tool call completed", "elapsed", time.Since(start))
	}
	if d.observer != nil {
		label := name
		if err != nil && err.Kind == KindUnknownTool {
			// keep the metric label set bounded
			label = "unknown"
		}
		d.observer.ObserveToolCall(label, strings.ToLower(outcome), time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) run(ctx context.Context, name string, raw map[string]any) (any, *Error) {
	tool, ok := d.registry.Lookup(name)
	if !ok {
		return nil, newError(KindUnknownTool, name, "unknown tool %q", name)
	}
	args, err := validate(tool.Params, raw)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Tool: name, Err: err}
	}
	result, err := tool.Handler(ctx, args)
	if err != nil {
		return nil, Classify(name, err)
	}
	return result, nil
}

