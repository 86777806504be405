// Package exec implements the two-phase executor from spec §4.6/§5: per
// vertex, resolve parameters into a manifest and hash it (phase 1), then
// consult the store and dispatch to a registered operation or recurse
// into a sub-graph (phase 2), in the topological order the graph
// resolver returns, with a cancellation checkpoint between vertices.
package exec

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/invariant-run/invariant/internal/diag"
	"github.com/invariant-run/invariant/internal/graph"
	"github.com/invariant-run/invariant/internal/lang"
	"github.com/invariant-run/invariant/internal/logging"
	"github.com/invariant-run/invariant/internal/registry"
	"github.com/invariant-run/invariant/internal/resolve"
	"github.com/invariant-run/invariant/internal/store"
	"github.com/invariant-run/invariant/internal/value"
)

// Executor runs graphs against a shared store and registry. The same
// Executor value is reused for a sub-graph vertex's recursive invocation,
// so that the inner vertices see exactly the store and registry the
// parent was given — spec §4.6's "no per-sub-graph cache layer" rule
// falls out of this for free.
type Executor struct {
	Store    store.Store
	Registry *registry.Registry
	Logger   hclog.Logger
}

// Option configures an Executor built by New.
type Option func(*Executor)

// WithLogger attaches an hclog.Logger for observability. Never affects
// control flow; the core performs identically with or without one.
func WithLogger(l hclog.Logger) Option {
	return func(e *Executor) { e.Logger = l }
}

// New builds an Executor over s and r.
func New(s store.Store, r *registry.Registry, opts ...Option) *Executor {
	e := &Executor{Store: s, Registry: r, Logger: logging.Null()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every vertex of g in topological order and returns a map
// with exactly one entry per top-level vertex. externalContext supplies
// values addressable by dependency name that are not themselves vertices;
// they are never included in the returned map nor hashed unless a
// vertex's manifest incorporates them.
func (e *Executor) Execute(ctx context.Context, g *graph.Graph, externalContext value.Map) (value.Map, error) {
	runID := uuid.New().String()
	log := e.Logger.With("run_id", runID)

	contextKeys := make(map[string]bool, len(externalContext))
	for k := range externalContext {
		contextKeys[k] = true
	}

	order, err := graph.Resolve(g, contextKeys, e.Registry)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string]value.Value, len(externalContext)+g.Len())
	for k, v := range externalContext {
		artifacts[k] = v
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, diag.ForVertexf(diag.KindCancelled, name, "cancelled before execution: %v", err)
		}

		v, _ := g.Get(name)
		log.Debug("vertex start", "vertex", name)

		artifact, err := e.executeVertex(ctx, v, artifacts)
		if err != nil {
			log.Debug("vertex failed", "vertex", name, "error", err)
			return nil, err
		}
		artifacts[name] = artifact
	}

	result := make(value.Map, g.Len())
	for _, name := range g.Names() {
		result[name] = artifacts[name]
	}
	return result, nil
}

func (e *Executor) executeVertex(ctx context.Context, v *graph.Vertex, artifacts map[string]value.Value) (value.Value, error) {
	// Phase 1: build environment and manifest.
	env := make(lang.Env, len(v.Deps))
	for _, dep := range v.Deps {
		env[dep] = artifacts[dep]
	}

	resolved, err := resolve.Resolve(v.Name, v.Params, env)
	if err != nil {
		return nil, err
	}
	manifest, ok := resolved.(value.Map)
	if !ok {
		return nil, diag.ForVertexf(diag.KindResolution, v.Name, "resolved parameters are not a map (got %T)", resolved)
	}
	digest := value.HashManifest(manifest)

	if err := ctx.Err(); err != nil {
		return nil, diag.ForVertexf(diag.KindCancelled, v.Name, "cancelled between phase 1 and phase 2: %v", err)
	}

	// Phase 2: dispatch.
	if v.IsSubGraph() {
		inner, err := e.Execute(ctx, v.Inner, manifest)
		if err != nil {
			return nil, err
		}
		return inner[v.Output], nil
	}
	return e.dispatchOp(ctx, v, manifest, digest)
}

func (e *Executor) dispatchOp(ctx context.Context, v *graph.Vertex, manifest value.Map, digest value.Digest) (value.Value, error) {
	if !v.Cache {
		e.Logger.Debug("dispatch (ephemeral)", "vertex", v.Name, "op", v.Op)
		return e.invoke(ctx, v, manifest)
	}

	if cached, err := e.Store.Get(ctx, v.Op, digest); err == nil {
		e.Logger.Debug("cache hit", "vertex", v.Name, "op", v.Op, "digest", digest.String())
		return cached, nil
	} else if err != store.ErrNotFound {
		return nil, diag.Wrap(diag.KindStoreIO, v.Name, "reading from store", err)
	}

	e.Logger.Debug("cache miss, dispatching", "vertex", v.Name, "op", v.Op, "digest", digest.String())
	artifact, err := e.invoke(ctx, v, manifest)
	if err != nil {
		return nil, err
	}
	if err := e.Store.Put(ctx, v.Op, digest, artifact); err != nil {
		return nil, diag.Wrap(diag.KindStoreIO, v.Name, "writing to store", err)
	}
	return artifact, nil
}

func (e *Executor) invoke(ctx context.Context, v *graph.Vertex, manifest value.Map) (value.Value, error) {
	op, ok := e.Registry.Get(v.Op)
	if !ok {
		return nil, diag.ForVertexf(diag.KindDispatch, v.Name, "operation %q is not registered", v.Op)
	}
	params, err := registry.Bind(op, manifest)
	if err != nil {
		return nil, diag.Wrap(diag.KindDispatch, v.Name, fmt.Sprintf("binding operation %q", v.Op), err)
	}
	result, err := op.Run(ctx, params)
	if err != nil {
		return nil, diag.Wrap(diag.KindContract, v.Name, fmt.Sprintf("operation %q returned an error", v.Op), err)
	}
	return result, nil
}
