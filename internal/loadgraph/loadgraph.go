// Package loadgraph implements the JSON wire format described
// informatively in spec §6: an external deserializer that turns a
// document of the shape
//
//	{ "format": "invariant-graph", "version": 1, "graph": {...} }
//
// into frozen graph.Graph values the core can execute. The core itself
// never sees JSON; this package is the one place that boundary is
// crossed, using the standard encoding/json exactly as the teacher's own
// plain-document views do.
package loadgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invariant-run/invariant/internal/graph"
	"github.com/invariant-run/invariant/internal/param"
	"github.com/invariant-run/invariant/internal/value"
)

// unmarshalAny decodes raw into an any tree with UseNumber so that JSON
// numbers surface as json.Number rather than as a forbidden Go float64 —
// the value union has no float member, so even the intermediate decode
// must never produce one.
func unmarshalAny(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// numberToValue maps a JSON number literal onto Int when it has no
// fractional or exponent part, and onto Decimal otherwise. Either way the
// result is one of the value union's closed variants, never a float.
func numberToValue(n json.Number) (value.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if iv, ok := value.NewIntFromString(s); ok {
			return iv, nil
		}
	}
	d, err := value.NewDecimalFromString(s)
	if err != nil {
		return nil, fmt.Errorf("loadgraph: invalid numeric literal %q: %w", s, err)
	}
	return d, nil
}

const (
	expectedFormat  = "invariant-graph"
	expectedVersion = 1
)

// document is the top-level envelope.
type document struct {
	Format  string          `json:"format"`
	Version int             `json:"version"`
	Graph   json.RawMessage `json:"graph"`
}

// Load parses a wire document and returns the frozen graph it describes.
func Load(data []byte) (*graph.Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loadgraph: parsing document: %w", err)
	}
	if doc.Format != expectedFormat {
		return nil, fmt.Errorf("loadgraph: unrecognised format %q, want %q", doc.Format, expectedFormat)
	}
	if doc.Version != expectedVersion {
		return nil, fmt.Errorf("loadgraph: unsupported version %d, want %d", doc.Version, expectedVersion)
	}
	return loadGraphObject(doc.Graph)
}

// LoadContext parses a plain JSON object of context values (no markers —
// context is always caller-supplied data, never itself resolved against
// anything).
func LoadContext(data []byte) (value.Map, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("loadgraph: parsing context: %w", err)
	}
	out := make(value.Map, len(raw))
	for k, v := range raw {
		val, err := decodeLiteralValue(v)
		if err != nil {
			return nil, fmt.Errorf("loadgraph: context key %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func loadGraphObject(raw json.RawMessage) (*graph.Graph, error) {
	var vertices map[string]json.RawMessage
	if err := json.Unmarshal(raw, &vertices); err != nil {
		return nil, fmt.Errorf("loadgraph: parsing graph object: %w", err)
	}

	g := graph.New()
	for name, vraw := range vertices {
		v, err := loadVertex(name, vraw)
		if err != nil {
			return nil, err
		}
		if err := g.Add(v); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type wireVertex struct {
	Kind   string          `json:"kind"`
	OpName string          `json:"op_name"`
	Params json.RawMessage `json:"params"`
	Deps   []string        `json:"deps"`
	Cache  *bool           `json:"cache"`
	Graph  json.RawMessage `json:"graph"`
	Output string          `json:"output"`
}

func loadVertex(name string, raw json.RawMessage) (*graph.Vertex, error) {
	var wv wireVertex
	if err := json.Unmarshal(raw, &wv); err != nil {
		return nil, fmt.Errorf("loadgraph: vertex %q: %w", name, err)
	}

	var params param.Node = param.Map{}
	if len(wv.Params) > 0 {
		p, err := decodeParamNode(wv.Params)
		if err != nil {
			return nil, fmt.Errorf("loadgraph: vertex %q: params: %w", name, err)
		}
		params = p
	}

	switch wv.Kind {
	case "node":
		cache := true
		if wv.Cache != nil {
			cache = *wv.Cache
		}
		return graph.NewOpVertex(name, wv.OpName, params, wv.Deps, cache)
	case "subgraph":
		inner, err := loadGraphObject(wv.Graph)
		if err != nil {
			return nil, fmt.Errorf("loadgraph: vertex %q: inner graph: %w", name, err)
		}
		return graph.NewSubGraphVertex(name, params, wv.Deps, inner, wv.Output)
	default:
		return nil, fmt.Errorf("loadgraph: vertex %q: unknown kind %q", name, wv.Kind)
	}
}

// decodeParamNode interprets one JSON value per spec §6's marker table:
// single-key objects whose only key is a reserved "$"-prefixed name are
// markers; any other object is a plain param.Map; arrays are param.List;
// scalars are param.Literal.
func decodeParamNode(raw json.RawMessage) (param.Node, error) {
	probe, err := unmarshalAny(raw)
	if err != nil {
		return nil, err
	}

	switch tv := probe.(type) {
	case nil:
		return param.Literal{V: value.Null{}}, nil
	case bool:
		return param.Literal{V: value.Bool(tv)}, nil
	case string:
		return param.Literal{V: value.Str(tv)}, nil
	case json.Number:
		n, err := numberToValue(tv)
		if err != nil {
			return nil, err
		}
		return param.Literal{V: n}, nil
	case []any:
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		out := make(param.List, len(arr))
		for i, elem := range arr {
			n, err := decodeParamNode(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		if len(tv) == 1 {
			for k := range tv {
				if marker, ok, err := decodeMarker(k, raw); ok || err != nil {
					return marker, err
				}
			}
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		out := make(param.Map, len(obj))
		for k, v := range obj {
			n, err := decodeParamNode(v)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("loadgraph: unsupported JSON value of type %T", probe)
	}
}

// decodeMarker checks whether key is one of the reserved marker keys and,
// if so, decodes raw (a single-key object) into the marker node it names.
func decodeMarker(key string, raw json.RawMessage) (param.Node, bool, error) {
	switch key {
	case "$ref":
		var body struct {
			Ref string `json:"$ref"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, true, err
		}
		return param.Ref{Name: body.Ref}, true, nil
	case "$cel":
		var body struct {
			Cel string `json:"$cel"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, true, err
		}
		return param.Expr{Source: body.Cel}, true, nil
	case "$decimal":
		var body struct {
			Decimal string `json:"$decimal"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, true, err
		}
		d, err := value.NewDecimalFromString(body.Decimal)
		if err != nil {
			return nil, true, fmt.Errorf("invalid $decimal literal %q: %w", body.Decimal, err)
		}
		return param.Literal{V: d}, true, nil
	case "$tuple":
		var body struct {
			Tuple []json.RawMessage `json:"$tuple"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, true, err
		}
		out := make(param.List, len(body.Tuple))
		for i, elem := range body.Tuple {
			n, err := decodeParamNode(elem)
			if err != nil {
				return nil, true, err
			}
			out[i] = n
		}
		return out, true, nil
	case "$icacheable":
		return nil, true, fmt.Errorf("$icacheable domain literals are not supported: Load has no type registry to resolve them")
	case "$literal":
		var body struct {
			Literal json.RawMessage `json:"$literal"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, true, err
		}
		v, err := decodeLiteralValue(body.Literal)
		if err != nil {
			return nil, true, err
		}
		return param.Literal{V: v}, true, nil
	default:
		return nil, false, nil
	}
}

// decodeLiteralValue decodes a plain (marker-free) JSON value directly
// into a value.Value, used for $literal escapes and for context
// documents, which never contain markers.
func decodeLiteralValue(raw json.RawMessage) (value.Value, error) {
	probe, err := unmarshalAny(raw)
	if err != nil {
		return nil, err
	}
	switch tv := probe.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(tv), nil
	case string:
		return value.Str(tv), nil
	case json.Number:
		return numberToValue(tv)
	case []any:
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		out := make(value.List, len(arr))
		for i, elem := range arr {
			v, err := decodeLiteralValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		out := make(value.Map, len(obj))
		for k, v := range obj {
			val, err := decodeLiteralValue(v)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("loadgraph: unsupported JSON value of type %T", probe)
	}
}
