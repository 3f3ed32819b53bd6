// Package ast defines the Snow abstract syntax tree: a tagged union of node
// types produced by the parser and annotated by later stages via side
// tables, never by mutating node structure.
package ast

import "github.com/jcnc-org/Snow-sub005/lang/token"

// NodeContext is carried by every AST node: the position in source it was
// parsed from, for diagnostics in every later stage.
type NodeContext struct {
	Pos  token.Pos
	File string
}

// Node is implemented by every AST node, expression or statement.
type Node interface {
	Context() NodeContext
	Walk(v Visitor)
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TopLevel is implemented by module/function/struct/import top-level nodes.
type TopLevel interface {
	Node
	topLevelNode()
}
