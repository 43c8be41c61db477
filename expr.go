package argz

import "fmt"

// ExprKind identifies the node type of an Expr.
type ExprKind int

// Expression node kinds.
const (
	IdentityExpr ExprKind = iota
	ConstExpr
	UnaryExpr
	BinaryExpr
)

// Expr is an unevaluated expression over a single placeholder value. The zero
// value is the identity, available as I:
//
//	argz.I.Mul(2).Add(1)               // (x * 2) + 1
//	argz.I.Ge(0).And(argz.I.Lt(10))    // (x >= 0) & (x < 10)
//
// Building an Expr never evaluates it. The same tree can serve as a predicate
// through Predicate and as a transform through Parser.
type Expr struct {
	op    *operator
	left  *Expr
	right *Expr
	value any
	kind  ExprKind
}

// I is the identity placeholder.
var I Expr

// Const returns a constant expression.
func Const(k any) Expr {
	return Expr{kind: ConstExpr, value: k}
}

// lift promotes raw operands to constants.
func lift(v any) *Expr {
	switch e := v.(type) {
	case Expr:
		return &e
	case *Expr:
		if e == nil {
			return &Expr{kind: ConstExpr}
		}
		return e
	}
	c := Const(v)
	return &c
}

func (e Expr) binary(op *operator, other any) Expr {
	l := e
	return Expr{kind: BinaryExpr, op: op, left: &l, right: lift(other)}
}

func (e Expr) unary(op *operator) Expr {
	l := e
	return Expr{kind: UnaryExpr, op: op, left: &l}
}

// Add builds e + other. Strings concatenate.
func (e Expr) Add(other any) Expr { return e.binary(opAdd, other) }

// Sub builds e - other.
func (e Expr) Sub(other any) Expr { return e.binary(opSub, other) }

// Mul builds e * other.
func (e Expr) Mul(other any) Expr { return e.binary(opMul, other) }

// Div builds e / other. The result is always a float.
func (e Expr) Div(other any) Expr { return e.binary(opDiv, other) }

// FloorDiv builds e // other, rounding toward negative infinity.
func (e Expr) FloorDiv(other any) Expr { return e.binary(opFloorDiv, other) }

// Mod builds e % other. The result takes the sign of other.
func (e Expr) Mod(other any) Expr { return e.binary(opMod, other) }

// Pow builds e ** other.
func (e Expr) Pow(other any) Expr { return e.binary(opPow, other) }

// And builds the bitwise e & other. Two bools yield a bool.
func (e Expr) And(other any) Expr { return e.binary(opAnd, other) }

// Or builds the bitwise e | other.
func (e Expr) Or(other any) Expr { return e.binary(opOr, other) }

// Xor builds the bitwise e ^ other.
func (e Expr) Xor(other any) Expr { return e.binary(opXor, other) }

// Shl builds e << other.
func (e Expr) Shl(other any) Expr { return e.binary(opShl, other) }

// Shr builds e >> other.
func (e Expr) Shr(other any) Expr { return e.binary(opShr, other) }

// Index builds e[key] over slices, arrays, strings and maps.
func (e Expr) Index(key any) Expr { return e.binary(opIndex, key) }

// Lt builds e < other.
func (e Expr) Lt(other any) Expr { return e.binary(opLt, other) }

// Le builds e <= other.
func (e Expr) Le(other any) Expr { return e.binary(opLe, other) }

// Eq builds e == other.
func (e Expr) Eq(other any) Expr { return e.binary(opEq, other) }

// Ne builds e != other.
func (e Expr) Ne(other any) Expr { return e.binary(opNe, other) }

// Ge builds e >= other.
func (e Expr) Ge(other any) Expr { return e.binary(opGe, other) }

// Gt builds e > other.
func (e Expr) Gt(other any) Expr { return e.binary(opGt, other) }

// Neg builds -e.
func (e Expr) Neg() Expr { return e.unary(opNeg) }

// Pos builds +e.
func (e Expr) Pos() Expr { return e.unary(opPos) }

// Abs builds |e|.
func (e Expr) Abs() Expr { return e.unary(opAbs) }

// Invert builds the bitwise complement ~e.
func (e Expr) Invert() Expr { return e.unary(opInvert) }

// Kind returns the node type.
func (e Expr) Kind() ExprKind { return e.kind }

// Op returns the operator symbol of a unary or binary node.
func (e Expr) Op() string {
	if e.op == nil {
		return ""
	}
	return e.op.symbol
}

// Operands returns the children of a node: none for leaves, one for unary
// nodes and two for binary nodes.
func (e Expr) Operands() []Expr {
	switch e.kind {
	case UnaryExpr:
		return []Expr{*e.left}
	case BinaryExpr:
		return []Expr{*e.left, *e.right}
	}
	return nil
}

// Value returns the constant of a ConstExpr node.
func (e Expr) Value() any { return e.value }

// Eval evaluates the expression with x substituted for the placeholder.
// Operator errors are returned unchanged.
func (e Expr) Eval(x any) (any, error) {
	switch e.kind {
	case IdentityExpr:
		return x, nil
	case ConstExpr:
		return e.value, nil
	case UnaryExpr:
		v, err := e.left.Eval(x)
		if err != nil {
			return nil, err
		}
		return e.op.unary(v)
	case BinaryExpr:
		a, err := e.left.Eval(x)
		if err != nil {
			return nil, err
		}
		b, err := e.right.Eval(x)
		if err != nil {
			return nil, err
		}
		return e.op.binary(a, b)
	}
	return nil, fmt.Errorf("%w: expression kind %d", ErrUnsupportedOperand, e.kind)
}

// String renders the expression with x standing for the placeholder.
func (e Expr) String() string {
	return e.render("x")
}

// Format renders the expression with the literal value v in place of the
// placeholder, as used in rejection reasons.
func (e Expr) Format(v any) string {
	return e.render(formatValue(v))
}

func (e Expr) render(placeholder string) string {
	switch e.kind {
	case IdentityExpr:
		return placeholder
	case ConstExpr:
		return formatValue(e.value)
	case UnaryExpr:
		return fmt.Sprintf(e.op.template, e.left.operand(placeholder))
	case BinaryExpr:
		if e.op == opIndex {
			return fmt.Sprintf(e.op.template, e.left.operand(placeholder), e.right.render(placeholder))
		}
		return fmt.Sprintf(e.op.template, e.left.operand(placeholder), e.right.operand(placeholder))
	}
	return "?"
}

// operand renders a child, parenthesizing binary nodes.
func (e Expr) operand(placeholder string) string {
	s := e.render(placeholder)
	if e.kind == BinaryExpr && e.op != opIndex {
		return "(" + s + ")"
	}
	return s
}

// Predicate returns a predicate accepting values for which the expression
// evaluates to a truthy result.
func (e Expr) Predicate() *ExprPredicate {
	return &ExprPredicate{expr: e}
}

// Parser returns a parser replacing each value with the expression's result.
func (e Expr) Parser() Parser {
	return Apply(e.String(), e.Eval)
}

// ExprPredicate tests the truthiness of an expression's result. Evaluation
// errors reject the value with the error message as the reason.
type ExprPredicate struct {
	expr Expr
}

// Expr returns the underlying expression.
func (p *ExprPredicate) Expr() Expr {
	return p.expr
}

// Test implements Predicate.
func (p *ExprPredicate) Test(value any) (bool, string) {
	result, err := p.expr.Eval(value)
	if err != nil {
		return false, fmt.Sprintf("Expression %s failed: %v", p.expr.Format(value), err)
	}
	if truthy(result) {
		return true, ""
	}
	return false, fmt.Sprintf("Expression %s evaluated to false", p.expr.Format(value))
}

func (p *ExprPredicate) String() string {
	return "expr(" + p.expr.String() + ")"
}
