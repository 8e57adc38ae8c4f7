// Package arith implements a grammar-restricted arithmetic evaluator. It
// accepts numeric literals, unary plus/minus, the binary operators + - * /
// and parentheses. Identifiers, calls, indexing and every other construct
// are rejected before evaluation; nothing is ever executed.
package arith

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// MaxExpressionLength bounds the accepted input size.
const MaxExpressionLength = 512

var (
	// ErrDivisionByZero is returned for x/0.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when integer arithmetic leaves the int64 range.
	ErrOverflow = errors.New("integer overflow")
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("empty expression")
)

// SyntaxError describes input that is not a well-formed arithmetic expression.
type SyntaxError struct {
	Expr   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression %q: %s", e.Expr, e.Reason)
}

// Number is an evaluation result. Integer results stay exact; division
// always produces a float.
type Number struct {
	i     int64
	f     float64
	isInt bool
}

// Int constructs an integer Number.
func Int(v int64) Number { return Number{i: v, isInt: true} }

// Float constructs a floating point Number.
func Float(v float64) Number { return Number{f: v} }

// IsInt reports whether the number is an exact integer value.
func (n Number) IsInt() bool { return n.isInt }

// Float64 returns the value as float64.
func (n Number) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// String renders integers without a fractional part and integral floats
// with a trailing ".0" (7/2 -> 3.5, 4/2 -> 2.0, 2+2 -> 4).
func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	f := n.f
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

const allowedChars = "0123456789.eE_+-*/() \t"

// Eval parses and evaluates expr.
func Eval(expr string) (Number, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return Number{}, ErrEmpty
	}
	if len(src) > MaxExpressionLength {
		return Number{}, &SyntaxError{Expr: truncate(src), Reason: fmt.Sprintf("longer than %d characters", MaxExpressionLength)}
	}
	for _, r := range src {
		if !strings.ContainsRune(allowedChars, r) {
			return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	// The Go scanner would treat these as comments.
	if strings.Contains(src, "//") || strings.Contains(src, "/*") {
		return Number{}, &SyntaxError{Expr: src, Reason: "unexpected operator sequence"}
	}

	node, err := parser.ParseExpr(splitSigns(src))
	if err != nil {
		return Number{}, &SyntaxError{Expr: src, Reason: err.Error()}
	}
	return eval(src, node)
}

// splitSigns separates runs of sign characters so that "2--2" reads as a
// binary minus followed by a unary minus instead of a decrement token.
func splitSigns(src string) string {
	for strings.Contains(src, "--") || strings.Contains(src, "++") {
		src = strings.ReplaceAll(src, "--", "- -")
		src = strings.ReplaceAll(src, "++", "+ +")
	}
	return src
}

func eval(src string, node ast.Expr) (Number, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		return literal(src, n)
	case *ast.ParenExpr:
		return eval(src, n.X)
	case *ast.UnaryExpr:
		x, err := eval(src, n.X)
		if err != nil {
			return Number{}, err
		}
		switch n.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			return negate(x)
		}
		return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("unsupported unary operator %s", n.Op)}
	case *ast.BinaryExpr:
		x, err := eval(src, n.X)
		if err != nil {
			return Number{}, err
		}
		y, err := eval(src, n.Y)
		if err != nil {
			return Number{}, err
		}
		return binary(src, n.Op, x, y)
	default:
		return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("unsupported construct %T", node)}
	}
}

func literal(src string, lit *ast.BasicLit) (Number, error) {
	switch lit.Kind {
	case token.INT:
		digits := strings.ReplaceAll(lit.Value, "_", "")
		if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
			return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("leading zeros in integer literal %s", lit.Value)}
		}
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Number{}, ErrOverflow
			}
			return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("invalid integer literal %s", lit.Value)}
		}
		return Int(v), nil
	case token.FLOAT:
		v, err := strconv.ParseFloat(strings.ReplaceAll(lit.Value, "_", ""), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("invalid float literal %s", lit.Value)}
		}
		return Float(v), nil
	default:
		return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("unsupported literal %s", lit.Value)}
	}
}

func negate(x Number) (Number, error) {
	if !x.isInt {
		return Float(-x.f), nil
	}
	if x.i == math.MinInt64 {
		return Number{}, ErrOverflow
	}
	return Int(-x.i), nil
}

func binary(src string, op token.Token, x, y Number) (Number, error) {
	if op == token.QUO {
		d := y.Float64()
		if d == 0 {
			return Number{}, ErrDivisionByZero
		}
		return Float(x.Float64() / d), nil
	}

	if x.isInt && y.isInt {
		switch op {
		case token.ADD:
			r := x.i + y.i
			if (r > x.i) != (y.i > 0) {
				return Number{}, ErrOverflow
			}
			return Int(r), nil
		case token.SUB:
			r := x.i - y.i
			if (r < x.i) != (y.i > 0) {
				return Number{}, ErrOverflow
			}
			return Int(r), nil
		case token.MUL:
			if x.i == 0 || y.i == 0 {
				return Int(0), nil
			}
			r := x.i * y.i
			if r/y.i != x.i || (x.i == -1 && y.i == math.MinInt64) || (y.i == -1 && x.i == math.MinInt64) {
				return Number{}, ErrOverflow
			}
			return Int(r), nil
		}
	} else {
		a, b := x.Float64(), y.Float64()
		switch op {
		case token.ADD:
			return Float(a + b), nil
		case token.SUB:
			return Float(a - b), nil
		case token.MUL:
			return Float(a * b), nil
		}
	}
	return Number{}, &SyntaxError{Expr: src, Reason: fmt.Sprintf("unsupported operator %s", op)}
}

func truncate(s string) string {
	if len(s) <= 32 {
		return s
	}
	return s[:32] + "..."
}
