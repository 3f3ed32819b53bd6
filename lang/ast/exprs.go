package ast

import "github.com/jcnc-org/Snow-sub005/lang/token"

type (
	// Identifier is a bare name reference, e.g. `x`.
	Identifier struct {
		NodeContext
		Name string
	}

	// NumberLiteral is an uninterpreted numeric literal; lang/ir parses Raw
	// into a typed constant using the suffix rules.
	NumberLiteral struct {
		NodeContext
		Raw    string
		Suffix byte
	}

	// StringLiteral is a decoded string literal.
	StringLiteral struct {
		NodeContext
		Value string
	}

	// BoolLiteral is `true` or `false`.
	BoolLiteral struct {
		NodeContext
		Value bool
	}

	// ArrayLiteral is `[e1, e2, ...]`.
	ArrayLiteral struct {
		NodeContext
		Elems []Expr
	}

	// Unary is a prefix unary operator expression, e.g. `-x`, `!x`.
	Unary struct {
		NodeContext
		Op      token.Kind
		Operand Expr
	}

	// Binary is an infix binary operator expression.
	Binary struct {
		NodeContext
		Op  token.Kind
		LHS Expr
		RHS Expr
	}

	// Call is a function call `callee(args...)`.
	Call struct {
		NodeContext
		Callee Expr
		Args   []Expr
	}

	// Index is an array index expression `array[index]`.
	Index struct {
		NodeContext
		Array Expr
		Idx   Expr
	}

	// Member is a field/method access expression `object.name`.
	Member struct {
		NodeContext
		Object Expr
		Name   string
	}

	// New is a struct construction expression `new Type(args...)`.
	New struct {
		NodeContext
		TypeName string
		Args     []Expr
	}
)

func (n *Identifier) Context() NodeContext    { return n.NodeContext }
func (n *Identifier) Walk(_ Visitor)          {}
func (n *Identifier) exprNode()               {}

func (n *NumberLiteral) Context() NodeContext { return n.NodeContext }
func (n *NumberLiteral) Walk(_ Visitor)       {}
func (n *NumberLiteral) exprNode()            {}

func (n *StringLiteral) Context() NodeContext { return n.NodeContext }
func (n *StringLiteral) Walk(_ Visitor)       {}
func (n *StringLiteral) exprNode()            {}

func (n *BoolLiteral) Context() NodeContext { return n.NodeContext }
func (n *BoolLiteral) Walk(_ Visitor)       {}
func (n *BoolLiteral) exprNode()            {}

func (n *ArrayLiteral) Context() NodeContext { return n.NodeContext }
func (n *ArrayLiteral) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *ArrayLiteral) exprNode() {}

func (n *Unary) Context() NodeContext { return n.NodeContext }
func (n *Unary) Walk(v Visitor)       { Walk(v, n.Operand) }
func (n *Unary) exprNode()            {}

func (n *Binary) Context() NodeContext { return n.NodeContext }
func (n *Binary) Walk(v Visitor) {
	Walk(v, n.LHS)
	Walk(v, n.RHS)
}
func (n *Binary) exprNode() {}

func (n *Call) Context() NodeContext { return n.NodeContext }
func (n *Call) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *Call) exprNode() {}

func (n *Index) Context() NodeContext { return n.NodeContext }
func (n *Index) Walk(v Visitor) {
	Walk(v, n.Array)
	Walk(v, n.Idx)
}
func (n *Index) exprNode() {}

func (n *Member) Context() NodeContext { return n.NodeContext }
func (n *Member) Walk(v Visitor)       { Walk(v, n.Object) }
func (n *Member) exprNode()            {}

func (n *New) Context() NodeContext { return n.NodeContext }
func (n *New) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *New) exprNode() {}
