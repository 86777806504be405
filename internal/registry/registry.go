// Package registry implements the process-wide-by-convention (but
// explicitly constructed, per spec §9's retired-singleton decision)
// operation lookup table: a mapping from operation name to Operation,
// built individually or in prefix-grouped bulk, consulted by the graph
// resolver for name validation and by the executor for dispatch.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/invariant-run/invariant/internal/diag"
	"github.com/invariant-run/invariant/internal/value"
)

// Operation is a pure named callable. Required lists the manifest keys
// that must be present; any manifest key not bound to a field of the
// struct NewParams returns is fatal unless that struct declares a
// `mapstructure:",remain"` catch-all field to absorb it.
type Operation struct {
	Name      string
	Required  []string
	NewParams func() any
	Run       func(ctx context.Context, params any) (value.Value, error)
}

// Registry is an explicit, per-embedding mapping from operation name to
// Operation. The zero value is not usable; build one with New.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*Operation
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{ops: map[string]*Operation{}}
}

// Register adds a single operation under its own Name.
func (r *Registry) Register(op *Operation) error {
	if op.Name == "" {
		return diag.New(diag.KindValidation, "operation must have a non-empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.Name] = op
	return nil
}

// RegisterPackage adds every operation in ops under "<prefix>:<short name>",
// the convention operation packages like ops/poly use.
func (r *Registry) RegisterPackage(prefix string, ops map[string]*Operation) error {
	for short, op := range ops {
		qualified := fmt.Sprintf("%s:%s", prefix, short)
		named := *op
		named.Name = qualified
		if err := r.Register(&named); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the operation registered under name, if any.
func (r *Registry) Get(name string) (*Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Has reports whether name is registered. Satisfies graph.OpRegistry.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = map[string]*Operation{}
}

// Bind validates manifest against op's declared required parameters and
// decodes it into a fresh instance of op's parameter struct, implementing
// spec §4.6's "pair manifest keys to operation parameters by name"
// dispatch-binding rule: required keys absent is fatal, a struct field
// left unset by an absent optional key keeps NewParams' default, and any
// manifest key with no matching field is fatal unless the struct has a
// `mapstructure:",remain"` catch-all field.
func Bind(op *Operation, manifest value.Map) (any, error) {
	for _, name := range op.Required {
		if _, ok := manifest[name]; !ok {
			return nil, diag.Newf(diag.KindDispatch, "operation %q: missing required parameter %q", op.Name, name)
		}
	}

	params := op.NewParams()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      params,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, diag.Wrap(diag.KindDispatch, "", "building parameter decoder", err)
	}

	src := make(map[string]any, len(manifest))
	for k, v := range manifest {
		src[k] = v
	}
	if err := dec.Decode(src); err != nil {
		return nil, diag.Wrap(diag.KindDispatch, "", fmt.Sprintf("binding parameters for operation %q", op.Name), err)
	}
	return params, nil
}

// Names returns every registered operation name, sorted — used by
// cmd/invariant-ops-doc to print a stable listing.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ops))
	for name := range r.ops {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
