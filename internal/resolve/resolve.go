// Package resolve implements the parameter resolution pipeline from spec
// §4.3: walking a parameter tree against a variable environment, resolving
// reference markers, expression markers, and string interpolation, to
// produce a fully-resolved manifest entry.
package resolve

import (
	"strings"

	"github.com/invariant-run/invariant/internal/diag"
	"github.com/invariant-run/invariant/internal/lang"
	"github.com/invariant-run/invariant/internal/param"
	"github.com/invariant-run/invariant/internal/value"
)

// Resolve produces the fully-resolved Value for a parameter tree node,
// given an environment binding dependency and context names to their
// Values. It mutates neither params nor env, and is idempotent: calling it
// again with the same inputs yields the same output.
func Resolve(vertex string, n param.Node, env lang.Env) (value.Value, error) {
	switch tn := n.(type) {
	case param.Literal:
		if s, ok := tn.V.(value.Str); ok {
			return resolveString(vertex, string(s), env)
		}
		return tn.V, nil

	case param.Ref:
		v, ok := env[tn.Name]
		if !ok {
			return nil, diag.ForVertexf(diag.KindResolution, vertex, "reference to undeclared dependency %q", tn.Name)
		}
		return v, nil

	case param.Expr:
		v, err := lang.Eval(tn.Source, env)
		if err != nil {
			return nil, diag.Wrap(diag.KindResolution, vertex, "expression \""+tn.Source+"\"", err)
		}
		return v, nil

	case param.List:
		out := make(value.List, len(tn))
		for i, elem := range tn {
			v, err := Resolve(vertex, elem, env)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case param.Map:
		out := make(value.Map, len(tn))
		for k, elem := range tn {
			v, err := Resolve(vertex, elem, env)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	default:
		return nil, diag.ForVertexf(diag.KindResolution, vertex, "unhandled parameter tree node %T", n)
	}
}

// segment is one piece of a parsed interpolation string: either literal
// text, or an expression source found between "${" and its balanced "}".
type segment struct {
	literal string
	expr    string // empty when this segment is literal text
	isExpr  bool
}

// resolveString applies spec §4.3's interpolation rules to a string
// literal. A string with no "${" at all is returned unchanged. A string
// whose content, after trimming surrounding whitespace, is exactly one
// "${expr}" segment resolves to expr's native result. Any other string
// containing "${...}" segments resolves each segment, stringifies it, and
// concatenates with the surrounding literal text. An unbalanced "${" with
// no matching "}" is left as literal text.
func resolveString(vertex, s string, env lang.Env) (value.Value, error) {
	if !strings.Contains(s, "${") {
		return value.Str(s), nil
	}

	if expr, ok := wholeStringExpr(s); ok {
		return evalSegmentNative(vertex, segment{expr: expr, isExpr: true}, env)
	}

	segments := splitInterpolation(s)
	var sb strings.Builder
	for _, seg := range segments {
		if !seg.isExpr {
			sb.WriteString(seg.literal)
			continue
		}
		v, err := evalSegmentNative(vertex, seg, env)
		if err != nil {
			return nil, err
		}
		sb.WriteString(value.Stringify(v))
	}
	return value.Str(sb.String()), nil
}

func evalSegmentNative(vertex string, seg segment, env lang.Env) (value.Value, error) {
	v, err := lang.Eval(seg.expr, env)
	if err != nil {
		return nil, diag.Wrap(diag.KindResolution, vertex, "interpolation \"${"+seg.expr+"}\"", err)
	}
	return v, nil
}

// wholeStringExpr reports whether s, after trimming surrounding
// whitespace, is exactly one "${expr}" segment — spec §4.3's
// whole-string-interpolation case, MUST-trimmed per spec §9's open
// question on whitespace-only interpolation.
func wholeStringExpr(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 3 || trimmed[0] != '$' || trimmed[1] != '{' || trimmed[len(trimmed)-1] != '}' {
		return "", false
	}
	end, ok := matchBrace(trimmed, 2)
	if !ok || end != len(trimmed)-1 {
		return "", false
	}
	return trimmed[2:end], true
}

// splitInterpolation scans s for "${...}" segments with balanced-brace
// matching. Unbalanced "${" (no matching "}") is treated as literal text.
func splitInterpolation(s string) []segment {
	var out []segment
	var literal strings.Builder

	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '$' && s[i+1] == '{' {
			end, ok := matchBrace(s, i+2)
			if ok {
				if literal.Len() > 0 {
					out = append(out, segment{literal: literal.String()})
					literal.Reset()
				}
				out = append(out, segment{expr: s[i+2 : end], isExpr: true})
				i = end + 1
				continue
			}
		}
		literal.WriteByte(s[i])
		i++
	}
	if literal.Len() > 0 {
		out = append(out, segment{literal: literal.String()})
	}
	return out
}

// matchBrace finds the index of the "}" balancing the "${" whose content
// starts at start, accounting for nested braces. Returns false if there is
// no matching "}".
func matchBrace(s string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
