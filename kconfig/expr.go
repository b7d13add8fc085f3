package kconfig

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Expr is a compiled dependency or condition expression.
//
// Kconfig expressions are parsed with expr-lang after rewriting "=" to "==".
// Logical and comparison operators are patched into calls of tristate
// functions, so "A && B" evaluates to min(A, B), "A || B" to max(A, B),
// and "!A" to y minus A.
type Expr struct {
	source  string
	refs    []string
	program *vm.Program
}

// Env holds the values visible to expressions during evaluation, keyed by
// symbol name. The constants y, m, and n are always present.
type Env map[string]any

// NewEnv returns an Env holding only the tristate constants.
func NewEnv() Env {
	return Env{
		"y": TriValue(On),
		"m": TriValue(Module),
		"n": TriValue(Off),
	}
}

// Set binds name to v.
func (e Env) Set(name string, v Value) { e[name] = v }

// String returns the expression source as written in the Kconfig file.
func (x *Expr) String() string {
	if x == nil {
		return "y"
	}

	return x.source
}

// Refs returns the symbols referenced by x in first-seen order.
func (x *Expr) Refs() []string {
	if x == nil {
		return nil
	}

	return x.refs
}

// Eval evaluates x in env. A nil Expr evaluates to y.
func (x *Expr) Eval(env Env) (any, error) {
	if x == nil {
		return TriValue(On), nil
	}

	return expr.Run(x.program, map[string]any(env))
}

// Tri evaluates x in env as a tristate. Evaluation errors yield n.
func (x *Expr) Tri(env Env) Tristate {
	v, err := x.Eval(env)
	if err != nil {
		return Off
	}

	return toTri(v)
}

// Symbol names that cannot be identifiers in an expression.
var constants = map[string]bool{"y": true, "m": true, "n": true}

func andSource(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return "(" + a + ") && (" + b + ")"
	}
}

func orSource(a, b string) string {
	if a == "" || b == "" {
		return ""
	}

	return "(" + a + ") || (" + b + ")"
}

// compileExpr compiles a Kconfig expression. env must bind every symbol in
// the tree so the type checker can resolve identifiers.
func compileExpr(source string, env map[string]any) (*Expr, error) {
	translated := translate(source)

	tree, err := parser.Parse(translated)
	if err != nil {
		return nil, ErrLoad.With(slog.String("expr", source)).Wrap(err)
	}

	refs := &refCollector{seen: map[string]bool{}}
	ast.Walk(&tree.Node, refs)

	if refs.bad != "" {
		return nil, ErrLoad.With(
			slog.String("expr", source),
			slog.String("unsupported", refs.bad),
		)
	}

	for _, name := range refs.names {
		if _, ok := env[name]; !ok {
			return nil, ErrUnresolvedDependency.With(
				slog.String("expr", source),
				slog.String("symbol", name),
			)
		}
	}

	program, err := expr.Compile(translated,
		expr.Env(env),
		expr.DisableAllBuiltins(),
		expr.Patch(tristatePatcher{}),
		expr.Function(fnAnd, triAnd),
		expr.Function(fnOr, triOr),
		expr.Function(fnNot, triNot),
		expr.Function(fnCompare, triCompare),
	)
	if err != nil {
		return nil, ErrLoad.With(slog.String("expr", source)).Wrap(err)
	}

	return &Expr{source: source, refs: refs.names, program: program}, nil
}

// translate rewrites Kconfig's "=" equality operator to "==" outside of
// string literals.
func translate(source string) string {
	var (
		b     strings.Builder
		quote byte
	)

	for i := 0; i < len(source); i++ {
		c := source[i]

		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(source) {
				b.WriteByte(c)
				i++
				c = source[i]
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

		case c == '=':
			prev := byte(0)
			if i > 0 {
				prev = source[i-1]
			}

			next := byte(0)
			if i+1 < len(source) {
				next = source[i+1]
			}

			if !strings.ContainsRune("!<>=", rune(prev)) && next != '=' {
				b.WriteString("==")

				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}

// refCollector records referenced symbols and rejects syntax outside the
// Kconfig expression language.
type refCollector struct {
	seen  map[string]bool
	names []string
	bad   string
}

func (r *refCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !constants[n.Value] && !r.seen[n.Value] {
			r.seen[n.Value] = true
			r.names = append(r.names, n.Value)
		}

	case *ast.BinaryNode:
		if _, ok := binaryOps[n.Operator]; !ok {
			r.reject(n.Operator)
		}

	case *ast.UnaryNode:
		switch n.Operator {
		case "!", "not", "-", "+":
		default:
			r.reject(n.Operator)
		}

	case *ast.IntegerNode, *ast.StringNode, *ast.BoolNode:

	default:
		r.reject(strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast."))
	}
}

func (r *refCollector) reject(what string) {
	if r.bad == "" {
		r.bad = what
	}
}

const (
	fnAnd     = "__and"
	fnOr      = "__or"
	fnNot     = "__not"
	fnCompare = "__cmp"
)

// binaryOps maps each accepted binary operator to the function implementing
// it and, for comparisons, the operator name passed along.
var binaryOps = map[string][2]string{
	"&&":  {fnAnd},
	"and": {fnAnd},
	"||":  {fnOr},
	"or":  {fnOr},
	"==":  {fnCompare, "=="},
	"!=":  {fnCompare, "!="},
	"<":   {fnCompare, "<"},
	"<=":  {fnCompare, "<="},
	">":   {fnCompare, ">"},
	">=":  {fnCompare, ">="},
}

// tristatePatcher replaces logical and comparison operators with calls to
// the tristate functions.
type tristatePatcher struct{}

func (tristatePatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.BinaryNode:
		op, ok := binaryOps[n.Operator]
		if !ok {
			return
		}

		args := []ast.Node{n.Left, n.Right}
		if op[1] != "" {
			args = append(args, &ast.StringNode{Value: op[1]})
		}

		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: op[0]},
			Arguments: args,
		})

	case *ast.UnaryNode:
		if n.Operator != "!" && n.Operator != "not" {
			return
		}

		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: fnNot},
			Arguments: []ast.Node{n.Node},
		})
	}
}

func triAnd(params ...any) (any, error) {
	return TriValue(min(toTri(params[0]), toTri(params[1]))), nil
}

func triOr(params ...any) (any, error) {
	return TriValue(max(toTri(params[0]), toTri(params[1]))), nil
}

func triNot(params ...any) (any, error) {
	return TriValue(On - toTri(params[0])), nil
}

func triCompare(params ...any) (any, error) {
	op, _ := params[2].(string)
	c := compare(params[0], params[1])

	var ok bool

	switch op {
	case "==":
		ok = c == 0
	case "!=":
		ok = c != 0
	case "<":
		ok = c < 0
	case "<=":
		ok = c <= 0
	case ">":
		ok = c > 0
	case ">=":
		ok = c >= 0
	}

	if ok {
		return TriValue(On), nil
	}

	return TriValue(Off), nil
}

// compare orders two operands numerically when both have a numeric reading
// and by their text otherwise.
func compare(a, b any) int {
	na, aok := numeric(a)
	nb, bok := numeric(b)

	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(text(a), text(b))
}

func numeric(v any) (int64, bool) {
	switch v := v.(type) {
	case Value:
		if v.Type.IsTristate() {
			return int64(v.Tri), true
		}

		return v.Number()

	case int:
		return int64(v), true

	case string:
		if n, ok := parseInt(v); ok {
			return n, true
		}

		if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
			return parseHex(v)
		}
	}

	return 0, false
}

func text(v any) string {
	switch v := v.(type) {
	case Value:
		return v.String()
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "y"
		}

		return "n"
	default:
		return ""
	}
}

func toTri(v any) Tristate {
	switch v := v.(type) {
	case Value:
		if v.Type.IsTristate() {
			return v.Tri
		}
	case string:
		t, _ := ParseTristate(v)

		return t
	case bool:
		if v {
			return On
		}
	}

	return Off
}
