// Package argexpr evaluates `$(...)` expressions in tool argument
// bindings using a JavaScript runtime (goja). The request parameters are
// exposed to expressions as the `params` object.
package argexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// Evaluator evaluates binding expressions. A fresh VM is set up per
// evaluation, so evaluators are safe for concurrent use.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate resolves an expression string against the given parameters.
//
// A string with no `$(...)` segment is returned as-is. A string that is
// exactly one `$(...)` segment returns the expression's typed value.
// Mixed strings have each segment evaluated and stringified in place.
func (e *Evaluator) Evaluate(expr string, params map[string]any) (any, error) {
	if !strings.Contains(expr, "$(") {
		return expr, nil
	}

	vm := goja.New()
	if err := vm.Set("params", params); err != nil {
		return nil, fmt.Errorf("set params: %w", err)
	}

	var sb strings.Builder
	rest := expr
	segments := 0
	var sole any

	for {
		start := strings.Index(rest, "$(")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:start])

		end := findMatchingParen(rest[start+2:])
		if end < 0 {
			return nil, fmt.Errorf("unterminated expression in %q", expr)
		}
		inner := rest[start+2 : start+2+end]

		val, err := vm.RunString(inner)
		if err != nil {
			return nil, fmt.Errorf("evaluate %q: %w", inner, err)
		}
		exported := val.Export()
		segments++
		sole = exported
		sb.WriteString(Stringify(exported))

		rest = rest[start+2+end+1:]
	}

	// A pure single-expression string keeps its native type.
	if segments == 1 && strings.HasPrefix(expr, "$(") && strings.HasSuffix(expr, ")") && sb.String() == Stringify(sole) {
		return sole, nil
	}
	return sb.String(), nil
}

// findMatchingParen returns the index of the closing parenthesis that
// balances an already-consumed opening one, or -1.
func findMatchingParen(s string) int {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Stringify renders an evaluated value as a command-line token.
// Integral floats print without a trailing fraction.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
