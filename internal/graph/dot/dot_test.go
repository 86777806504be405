package dot

import (
	"strings"
	"testing"

	"github.com/invariant-run/invariant/internal/graph"
	"github.com/invariant-run/invariant/internal/param"
)

func TestWriteProducesValidDigraphShell(t *testing.T) {
	g := graph.New()
	a, err := graph.NewOpVertex("a", "stdlib:identity", param.Map{}, nil, true)
	if err != nil {
		t.Fatalf("NewOpVertex: %v", err)
	}
	if err := g.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	b, err := graph.NewOpVertex("b", "stdlib:identity", param.Map{}, []string{"a"}, false)
	if err != nil {
		t.Fatalf("NewOpVertex: %v", err)
	}
	if err := g.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var buf strings.Builder
	if err := Write(g, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph {\n") {
		t.Errorf("missing digraph header: %q", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("missing closing brace: %q", out)
	}
	if !strings.Contains(out, `"a" -> "b"`) {
		t.Errorf("missing dependency edge a->b: %q", out)
	}
	if !strings.Contains(out, "[ephemeral]") {
		t.Errorf("expected ephemeral marker on b's label: %q", out)
	}
}
