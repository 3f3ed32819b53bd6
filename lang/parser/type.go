package parser

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// parseType parses a type reference: a builtin type keyword or a struct
// name identifier, optionally followed by one or more `[]` suffixes marking
// an array type. Snow's grammar spells array types as `ElemType[]`,
// resolved the same way as an array literal's element type — see
// lang/resolver.
func (p *Parser) parseType() *ast.TypeRef {
	p.skipComments()
	t := p.peek()
	var name string
	if token.IsTypeName(t.Kind) {
		name = t.Kind.String()
		p.next()
	} else if t.Kind == token.IDENT {
		name = t.Lexeme
		p.next()
	} else {
		p.unexpected()
		return nil
	}
	ref := &ast.TypeRef{Name: name}
	for p.peek().Kind == token.LBRACK && p.peekAt(1).Kind == token.RBRACK {
		p.next()
		p.next()
		ref = &ast.TypeRef{IsArray: true, Elem: ref}
	}
	return ref
}
