// Package tool implements the ToolRegistry (spec.md §4.1): typed tool
// declarations exposed to the model, argument validation against a
// JSON schema generated from each tool's argument struct, and bounded
// dispatch that turns handler panics, timeouts, and validation
// failures into structured outcomes instead of raised exceptions.
//
// Grounded on the teacher repo's tools/registry.go and
// tools/interfaces.go (ToolInfo/Tool/ToolResult), generalized with
// schema generation (invopop/jsonschema) and argument decoding
// (mitchellh/mapstructure) — both declared but unwired in the
// teacher's go.mod.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"

	"github.com/lexframe/lexframe/internal/coreerr"
	"github.com/lexframe/lexframe/internal/registry"
	"github.com/lexframe/lexframe/model"
)

// DefaultTimeout is the per-dispatch handler timeout (spec.md §4.1).
const DefaultTimeout = 20 * time.Second

// Context is the per-dispatch environment a handler receives. It never
// embeds request-scoped business data beyond what a handler needs to
// resolve and persist domain entities — session/contract identity and
// the collaborators a handler may call.
type Context struct {
	SessionID  string
	ContractID *string
	AgentName  string
}

// Handler executes one tool call against already-decoded, schema-valid
// arguments and returns a JSON-marshalable value or an error. Handlers
// never need to validate args shape themselves — the registry did that
// before calling them.
type Handler func(ctx context.Context, tc *Context, args any) (any, error)

// Definition is one tool's full declaration: its LLM-facing menu entry
// plus the typed argument shape and handler that back it.
type Definition struct {
	Name        string
	Description string
	// ArgsSample is a zero-value instance of the tool's argument struct,
	// e.g. &getContractArgs{}. Used both to generate the JSON schema
	// shown to the model and as the decode target for raw arguments.
	ArgsSample any
	Handler    Handler
	// Timeout overrides DefaultTimeout when non-zero.
	Timeout time.Duration
}

func (d Definition) schema() (map[string]any, error) {
	reflector := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := reflector.Reflect(d.ArgsSample)
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("tool %s: marshal schema: %w", d.Name, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("tool %s: unmarshal schema: %w", d.Name, err)
	}
	return out, nil
}

// Outcome is what Dispatch returns: either a successful value or a
// structured failure kind, never a bare Go error escaping to the
// caller's caller.
type Outcome struct {
	Value any
	Err   *coreerr.Error
}

// JSON serializes an Outcome the way it is fed back to the model as a
// tool_result: the value on success, or {"error": "..."} on failure —
// the model sees a message it can react to, never a Go stack trace.
func (o Outcome) JSON() string {
	if o.Err != nil {
		raw, _ := json.Marshal(map[string]string{"error": coreerr.UserMessage(o.Err.Kind)})
		return string(raw)
	}
	raw, err := json.Marshal(o.Value)
	if err != nil {
		raw, _ = json.Marshal(map[string]string{"error": "failed to serialize tool result"})
	}
	return string(raw)
}

// Registry holds the full set of tools available to the runtime,
// immutable after startup (spec.md §5).
type Registry struct {
	defs registry.Registry[Definition]
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{defs: registry.New[Definition]()}
}

// MustRegister registers a tool definition, panicking on a duplicate
// name — definitions are registered once at service-container
// construction time, so a collision there is a programming error, not
// a runtime condition to recover from.
func (r *Registry) MustRegister(d Definition) {
	if err := r.defs.Register(d.Name, d); err != nil {
		panic(fmt.Sprintf("tool: %v", err))
	}
}

// Subset returns the declarations for exactly the named tools, in the
// given order — used to scope an agent's tool menu to its configured
// subset (spec.md §4.5).
func (r *Registry) Subset(names []string) ([]model.ToolDeclaration, error) {
	out := make([]model.ToolDeclaration, 0, len(names))
	for _, name := range names {
		def, ok := r.defs.Get(name)
		if !ok {
			return nil, coreerr.New("tool.Registry", "Subset", coreerr.KindToolUnknown, fmt.Sprintf("tool %q is not registered", name), nil)
		}
		schema, err := def.schema()
		if err != nil {
			return nil, coreerr.New("tool.Registry", "Subset", coreerr.KindInternal, "failed to build tool schema", err)
		}
		out = append(out, model.ToolDeclaration{Name: def.Name, Description: def.Description, Parameters: schema})
	}
	return out, nil
}

// Dispatch validates raw arguments against the tool's schema, decodes
// them into its typed argument struct, and invokes the handler under a
// bounded timeout. It never panics or returns a raw Go error to the
// caller — every failure path is reported as an Outcome with a
// coreerr.Kind drawn from the taxonomy (unknown_tool, bad_arguments,
// handler_error, handler_timeout).
func (r *Registry) Dispatch(ctx context.Context, tc *Context, name string, rawArgs map[string]any) Outcome {
	def, ok := r.defs.Get(name)
	if !ok {
		return Outcome{Err: coreerr.New("tool.Registry", "Dispatch", coreerr.KindToolUnknown, fmt.Sprintf("tool %q is not registered", name), nil)}
	}

	args, err := decodeArgs(def, rawArgs)
	if err != nil {
		return Outcome{Err: coreerr.New("tool.Registry", "Dispatch", coreerr.KindToolBadArguments, err.Error(), err)}
	}

	timeout := def.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("handler panicked: %v", p)}
			}
		}()
		value, err := def.Handler(dctx, tc, args)
		done <- result{value: value, err: err}
	}()

	select {
	case <-dctx.Done():
		return Outcome{Err: coreerr.New("tool.Registry", "Dispatch", coreerr.KindToolTimeout, fmt.Sprintf("tool %q did not complete within %s", name, timeout), dctx.Err())}
	case r := <-done:
		if r.err != nil {
			return Outcome{Err: coreerr.New("tool.Registry", "Dispatch", coreerr.KindToolHandlerError, r.err.Error(), r.err)}
		}
		return Outcome{Value: r.value}
	}
}

// newLike allocates a fresh zero value of sample's underlying type,
// returning a pointer to it — sample is expected to be a pointer
// itself (e.g. &getContractArgs{}).
func newLike(sample any) any {
	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// decodeArgs rejects calls missing a field the schema marks required,
// then clones the definition's argument sample type and decodes the raw
// map into it, rejecting unknown fields so a model's malformed
// call surfaces as bad_arguments rather than silently dropped data.
func decodeArgs(def Definition, raw map[string]any) (any, error) {
	schema, err := def.schema()
	if err != nil {
		return nil, err
	}
	if required, ok := schema["required"].([]any); ok {
		for _, field := range required {
			name, _ := field.(string)
			if _, present := raw[name]; !present {
				return nil, fmt.Errorf("invalid arguments for %s: missing required field %q", def.Name, name)
			}
		}
	}
	target := newLike(def.ArgsSample)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      target,
		TagName:     "json",
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", def.Name, err)
	}
	return target, nil
}
