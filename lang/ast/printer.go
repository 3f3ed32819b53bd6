package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented s-expression-ish dump of n to w, for the CLI's
// `parse` introspection command. It is a debug aid, not a serialization
// format: no guarantee of round-tripping.
func Print(w io.Writer, n Node) {
	p := &printer{w: w}
	p.node(n, 0)
}

type printer struct{ w io.Writer }

func (p *printer) indent(depth int) { fmt.Fprint(p.w, strings.Repeat("  ", depth)) }

func (p *printer) node(n Node, depth int) {
	p.indent(depth)
	switch x := n.(type) {
	case *Module:
		fmt.Fprintf(p.w, "module %s\n", x.Name)
		for _, i := range x.Imports {
			p.node(i, depth+1)
		}
		for _, g := range x.Globals {
			p.indent(depth + 1)
			fmt.Fprintf(p.w, "global %s\n", g.Name)
		}
		for _, s := range x.Structs {
			p.node(s, depth+1)
		}
		for _, f := range x.Functions {
			p.node(f, depth+1)
		}
	case *Import:
		fmt.Fprintf(p.w, "import %s\n", x.Qualified)
	case *Struct:
		fmt.Fprintf(p.w, "struct %s", x.Name)
		if x.Parent != "" {
			fmt.Fprintf(p.w, " extends %s", x.Parent)
		}
		fmt.Fprintln(p.w)
		for _, m := range x.Methods {
			p.node(m, depth+1)
		}
	case *Function:
		fmt.Fprintf(p.w, "function %s (%d params)\n", x.Name, len(x.Params))
		for _, s := range x.Body {
			p.node(s, depth+1)
		}
	case *Declaration:
		fmt.Fprintf(p.w, "declare %s\n", x.Name)
	case *Assignment:
		fmt.Fprintln(p.w, "assign")
	case *IndexAssignment:
		fmt.Fprintln(p.w, "index-assign")
	case *If:
		fmt.Fprintln(p.w, "if")
		for _, s := range x.Then {
			p.node(s, depth+1)
		}
		if x.Else != nil {
			p.indent(depth)
			fmt.Fprintln(p.w, "else")
			for _, s := range x.Else {
				p.node(s, depth+1)
			}
		}
	case *Loop:
		fmt.Fprintln(p.w, "loop")
		for _, s := range x.Body {
			p.node(s, depth+1)
		}
	case *Return:
		fmt.Fprintln(p.w, "return")
	case *Break:
		fmt.Fprintln(p.w, "break")
	case *Continue:
		fmt.Fprintln(p.w, "continue")
	case *ExpressionStmt:
		fmt.Fprintln(p.w, "expr-stmt")
	default:
		fmt.Fprintf(p.w, "%T\n", n)
	}
}
