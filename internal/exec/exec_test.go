package exec

import (
	"context"
	"testing"

	"github.com/invariant-run/invariant/internal/graph"
	"github.com/invariant-run/invariant/internal/param"
	"github.com/invariant-run/invariant/internal/registry"
	"github.com/invariant-run/invariant/internal/store"
	"github.com/invariant-run/invariant/internal/value"
	"github.com/invariant-run/invariant/ops/poly"
	"github.com/invariant-run/invariant/ops/stdlib"
)

func newStdlibRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	if err := r.RegisterPackage("stdlib", stdlib.Operations()); err != nil {
		t.Fatalf("RegisterPackage(stdlib): %v", err)
	}
	return r
}

// countingStore wraps a Store and counts Put calls per op, so tests can
// assert spec §8's exact-dispatch-count scenarios directly against
// writes rather than inferring it from timing.
type countingStore struct {
	store.Store
	puts map[string]int
}

func newCountingStore(inner store.Store) *countingStore {
	return &countingStore{Store: inner, puts: map[string]int{}}
}

func (c *countingStore) Put(ctx context.Context, op string, digest value.Digest, artifact value.Value) error {
	c.puts[op]++
	return c.Store.Put(ctx, op, digest, artifact)
}

func identityVertex(t *testing.T, name string, n int64) *graph.Vertex {
	t.Helper()
	v, err := graph.NewOpVertex(name, "stdlib:identity", param.Map{"value": param.Literal{V: value.NewInt(n)}}, nil, true)
	if err != nil {
		t.Fatalf("NewOpVertex(%s): %v", name, err)
	}
	return v
}

// TestAdditionPipeline is spec §8 scenario 1.
func TestAdditionPipeline(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, identityVertex(t, "x", 5))
	mustAdd(t, g, identityVertex(t, "y", 3))
	sum, err := graph.NewOpVertex("sum", "stdlib:add",
		param.Map{"a": param.Ref{Name: "x"}, "b": param.Ref{Name: "y"}},
		[]string{"x", "y"}, true)
	if err != nil {
		t.Fatalf("NewOpVertex(sum): %v", err)
	}
	mustAdd(t, g, sum)

	s := newCountingStore(store.NewMemory())
	e := New(s, newStdlibRegistry(t))

	result, err := e.Execute(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !value.Equal(result["sum"], value.NewInt(8)) {
		t.Fatalf("got sum=%v want 8", result["sum"])
	}

	// x and y are distinct manifests under the same op name, so
	// stdlib:identity is written twice (once each); stdlib:add once.
	identityPutsAfterFirstRun := s.puts["stdlib:identity"]
	addPutsAfterFirstRun := s.puts["stdlib:add"]
	if identityPutsAfterFirstRun != 2 {
		t.Errorf("stdlib:identity: got %d puts after first run, want 2 (x and y)", identityPutsAfterFirstRun)
	}
	if addPutsAfterFirstRun != 1 {
		t.Errorf("stdlib:add: got %d puts after first run, want 1", addPutsAfterFirstRun)
	}

	result2, err := e.Execute(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !value.Equal(result2["sum"], value.NewInt(8)) {
		t.Fatalf("second run: got sum=%v want 8", result2["sum"])
	}
	// The second run over an unchanged graph must be all cache hits: no
	// further writes to either op.
	if s.puts["stdlib:identity"] != identityPutsAfterFirstRun {
		t.Errorf("stdlib:identity: second run added %d puts, want 0", s.puts["stdlib:identity"]-identityPutsAfterFirstRun)
	}
	if s.puts["stdlib:add"] != addPutsAfterFirstRun {
		t.Errorf("stdlib:add: second run added %d puts, want 0", s.puts["stdlib:add"]-addPutsAfterFirstRun)
	}
}

// TestCommutativeCanonicalisation is spec §8 scenario 2.
func TestCommutativeCanonicalisation(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, identityVertex(t, "x", 7))
	mustAdd(t, g, identityVertex(t, "y", 3))

	mkSum := func(name string) *graph.Vertex {
		v, err := graph.NewOpVertex(name, "stdlib:add",
			param.Map{
				"a": param.Expr{Source: "min(x, y)"},
				"b": param.Expr{Source: "max(x, y)"},
			},
			[]string{"x", "y"}, true)
		if err != nil {
			t.Fatalf("NewOpVertex(%s): %v", name, err)
		}
		return v
	}
	mustAdd(t, g, mkSum("sum_xy"))
	mustAdd(t, g, mkSum("sum_yx"))

	s := newCountingStore(store.NewMemory())
	e := New(s, newStdlibRegistry(t))

	result, err := e.Execute(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !value.Equal(result["sum_xy"], value.NewInt(10)) || !value.Equal(result["sum_yx"], value.NewInt(10)) {
		t.Fatalf("got sum_xy=%v sum_yx=%v want both 10", result["sum_xy"], result["sum_yx"])
	}
	if s.puts["stdlib:add"] != 1 {
		t.Errorf("stdlib:add dispatched %d times, want exactly 1 (both vertices share a manifest)", s.puts["stdlib:add"])
	}
}

// TestDistributiveLawOverPolynomials is spec §8 scenario 3.
func TestDistributiveLawOverPolynomials(t *testing.T) {
	r := registry.New()
	if err := r.RegisterPackage("poly", poly.Operations()); err != nil {
		t.Fatalf("RegisterPackage(poly): %v", err)
	}

	mkFromCoeffs := func(name string, coeffs ...int64) *graph.Vertex {
		elems := make(param.List, len(coeffs))
		for i, c := range coeffs {
			elems[i] = param.Literal{V: value.NewInt(c)}
		}
		v, err := graph.NewOpVertex(name, "poly:from_coefficients", param.Map{"coefficients": elems}, nil, true)
		if err != nil {
			t.Fatalf("NewOpVertex(%s): %v", name, err)
		}
		return v
	}

	g := graph.New()
	mustAdd(t, g, mkFromCoeffs("p", 1, 2, 1))
	mustAdd(t, g, mkFromCoeffs("q", 3, 0, -1))
	mustAdd(t, g, mkFromCoeffs("r", 1, 1))

	mkBinary := func(name, op, aDep, bDep string, deps []string) *graph.Vertex {
		v, err := graph.NewOpVertex(name, op,
			param.Map{"a": param.Ref{Name: aDep}, "b": param.Ref{Name: bDep}}, deps, true)
		if err != nil {
			t.Fatalf("NewOpVertex(%s): %v", name, err)
		}
		return v
	}
	mustAdd(t, g, mkBinary("p_plus_q", "poly:add", "p", "q", []string{"p", "q"}))
	mustAdd(t, g, mkBinary("lhs", "poly:multiply", "p_plus_q", "r", []string{"p_plus_q", "r"}))
	mustAdd(t, g, mkBinary("p_times_r", "poly:multiply", "p", "r", []string{"p", "r"}))
	mustAdd(t, g, mkBinary("q_times_r", "poly:multiply", "q", "r", []string{"q", "r"}))
	mustAdd(t, g, mkBinary("rhs", "poly:add", "p_times_r", "q_times_r", []string{"p_times_r", "q_times_r"}))

	evalVertex := func(name, polyDep string) *graph.Vertex {
		v, err := graph.NewOpVertex(name, "poly:evaluate",
			param.Map{"p": param.Ref{Name: polyDep}, "x": param.Literal{V: value.NewInt(5)}}, []string{polyDep}, true)
		if err != nil {
			t.Fatalf("NewOpVertex(%s): %v", name, err)
		}
		return v
	}
	mustAdd(t, g, evalVertex("eval_lhs", "lhs"))
	mustAdd(t, g, evalVertex("eval_rhs", "rhs"))

	s := newCountingStore(store.NewMemory())
	e := New(s, r)

	result, err := e.Execute(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	lhsPoly := result["lhs"].(poly.Polynomial)
	rhsPoly := result["rhs"].(poly.Polynomial)
	if lhsPoly.StableHash() != rhsPoly.StableHash() {
		t.Errorf("lhs and rhs polynomials differ: lhs=%v rhs=%v", lhsPoly.Coeffs, rhsPoly.Coeffs)
	}
	if !value.Equal(result["eval_lhs"], result["eval_rhs"]) {
		t.Errorf("eval_lhs=%v eval_rhs=%v should be equal", result["eval_lhs"], result["eval_rhs"])
	}
	if s.puts["poly:multiply"] != 3 {
		t.Errorf("poly:multiply dispatched %d times over a cold store, want exactly 3", s.puts["poly:multiply"])
	}
}

// TestSubGraphReuse is spec §8 scenario 4.
func TestSubGraphReuse(t *testing.T) {
	inner := graph.New()
	sumInner, err := graph.NewOpVertex("sum", "stdlib:add",
		param.Map{"a": param.Ref{Name: "left"}, "b": param.Ref{Name: "right"}},
		[]string{"left", "right"}, true)
	if err != nil {
		t.Fatalf("NewOpVertex(inner sum): %v", err)
	}
	mustAdd(t, inner, sumInner)

	g := graph.New()
	mustAdd(t, g, identityVertex(t, "x", 5))
	mustAdd(t, g, identityVertex(t, "y", 3))
	subVertex, err := graph.NewSubGraphVertex("sum",
		param.Map{"left": param.Ref{Name: "x"}, "right": param.Ref{Name: "y"}},
		[]string{"x", "y"}, inner, "sum")
	if err != nil {
		t.Fatalf("NewSubGraphVertex: %v", err)
	}
	mustAdd(t, g, subVertex)

	// A sibling op vertex that also adds 5+3 directly, to confirm the
	// sub-graph's inner "add" dispatch is reused via the shared store.
	siblingAdd, err := graph.NewOpVertex("direct_sum", "stdlib:add",
		param.Map{"a": param.Ref{Name: "x"}, "b": param.Ref{Name: "y"}},
		[]string{"x", "y"}, true)
	if err != nil {
		t.Fatalf("NewOpVertex(direct_sum): %v", err)
	}
	mustAdd(t, g, siblingAdd)

	s := newCountingStore(store.NewMemory())
	e := New(s, newStdlibRegistry(t))

	result, err := e.Execute(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !value.Equal(result["sum"], value.NewInt(8)) {
		t.Fatalf("got sum=%v want 8", result["sum"])
	}
	if !value.Equal(result["direct_sum"], value.NewInt(8)) {
		t.Fatalf("got direct_sum=%v want 8", result["direct_sum"])
	}
	if s.puts["stdlib:add"] != 1 {
		t.Errorf("stdlib:add dispatched %d times, want exactly 1 (sub-graph and sibling share the digest)", s.puts["stdlib:add"])
	}
}

// TestExternalContextScalar is spec §8 scenario 5.
func TestExternalContextScalar(t *testing.T) {
	g := graph.New()
	bg, err := graph.NewOpVertex("bg", "stdlib:identity",
		param.Map{"value": param.Expr{Source: "root_width"}}, []string{"root_width"}, true)
	if err != nil {
		t.Fatalf("NewOpVertex(bg): %v", err)
	}
	mustAdd(t, g, bg)

	e := New(store.NewMemory(), newStdlibRegistry(t))

	result, err := e.Execute(context.Background(), g, value.Map{"root_width": value.NewInt(144)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !value.Equal(result["bg"], value.NewInt(144)) {
		t.Fatalf("got bg=%v want 144", result["bg"])
	}

	_, err = e.Execute(context.Background(), g, nil)
	if err == nil {
		t.Fatal("expected a validation error when root_width is missing from context")
	}
}

// TestEphemeralVertex is spec §8 scenario 6.
func TestEphemeralVertex(t *testing.T) {
	g := graph.New()
	v, err := graph.NewOpVertex("x", "stdlib:identity", param.Map{"value": param.Literal{V: value.NewInt(1)}}, nil, false)
	if err != nil {
		t.Fatalf("NewOpVertex: %v", err)
	}
	mustAdd(t, g, v)

	s := newCountingStore(store.NewMemory())
	e := New(s, newStdlibRegistry(t))

	for i := 0; i < 2; i++ {
		result, err := e.Execute(context.Background(), g, nil)
		if err != nil {
			t.Fatalf("Execute run %d: %v", i, err)
		}
		if !value.Equal(result["x"], value.NewInt(1)) {
			t.Fatalf("run %d: got %v want 1", i, result["x"])
		}
	}
	if s.puts["stdlib:identity"] != 0 {
		t.Errorf("ephemeral vertex wrote to the store %d times, want 0", s.puts["stdlib:identity"])
	}
}

// TestFloatRejection is spec §8 scenario 7.
func TestFloatRejection(t *testing.T) {
	g := graph.New()
	v, err := graph.NewOpVertex("v", "stdlib:identity",
		param.Map{"value": param.Expr{Source: "3 / 4"}}, nil, true)
	if err != nil {
		t.Fatalf("NewOpVertex: %v", err)
	}
	mustAdd(t, g, v)

	s := newCountingStore(store.NewMemory())
	e := New(s, newStdlibRegistry(t))

	_, err = e.Execute(context.Background(), g, nil)
	if err == nil {
		t.Fatal("expected a float-result error for 3/4")
	}
	if s.puts["stdlib:identity"] != 0 {
		t.Errorf("expected zero store writes, got %d", s.puts["stdlib:identity"])
	}
	stats := s.Stats()
	if stats.Puts != 0 {
		t.Errorf("expected zero total puts, got %d", stats.Puts)
	}
}

func mustAdd(t *testing.T, g *graph.Graph, v *graph.Vertex) {
	t.Helper()
	if err := g.Add(v); err != nil {
		t.Fatalf("Add(%s): %v", v.Name, err)
	}
}
