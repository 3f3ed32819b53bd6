package ast

// Visitor is invoked by Walk for every node visited. If Visit returns a
// non-nil Visitor, Walk visits the node's children with that visitor; nil
// stops descent into the node's children (but not into its siblings).
type Visitor interface {
	Visit(n Node) Visitor
}

// VisitorFunc adapts a plain function to a Visitor.
type VisitorFunc func(n Node) Visitor

func (f VisitorFunc) Visit(n Node) Visitor { return f(n) }

// Walk traverses the AST rooted at n in depth-first order, invoking v at
// each node. It is a thin dispatcher: the actual per-kind traversal lives
// in each node's own Walk method.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n); v == nil {
		return
	}
	n.Walk(v)
}
