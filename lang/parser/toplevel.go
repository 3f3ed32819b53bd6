package parser

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// parseModule parses `module : IDENT NEWLINE` then repeatedly parses
// import/globals/struct/function sections, in any order and any number,
// until `end module`.
func (p *Parser) parseModule() *ast.Module {
	start := p.peek().Pos
	p.next() // 'module'
	p.expect(token.COLON)
	name, _ := p.expectIdent()
	mod := &ast.Module{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Name: name}

	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.END:
			p.next()
			p.expect(token.MODULE)
			return mod
		case token.IMPORT:
			mod.Imports = append(mod.Imports, p.parseImport())
		case token.GLOBALS:
			mod.Globals = append(mod.Globals, p.parseGlobalsSection()...)
		case token.STRUCT:
			mod.Structs = append(mod.Structs, p.parseStruct())
		case token.FUNCTION:
			mod.Functions = append(mod.Functions, p.parseFunction())
		case token.EOF:
			p.errorf(MissingToken, p.peek().Pos, "end module", "")
			return mod
		default:
			p.unexpected()
			p.syncToNewlineOrTopLevel()
		}
	}
}

func (p *Parser) parseImport() *ast.Import {
	start := p.peek().Pos
	p.next() // 'import'
	p.expect(token.COLON)
	name := p.parseQualifiedName()
	return &ast.Import{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Qualified: name}
}

func (p *Parser) parseQualifiedName() string {
	name, _ := p.expectIdent()
	for p.peek().Kind == token.DOT {
		p.next()
		part, ok := p.expectIdent()
		if !ok {
			break
		}
		name += "." + part
	}
	return name
}

// parseGlobalsSection parses `globals: decl*` until the next top-level
// keyword or `end`.
func (p *Parser) parseGlobalsSection() []*ast.Global {
	p.next() // 'globals'
	p.expect(token.COLON)
	var out []*ast.Global
	for {
		p.skipBlank()
		if p.peek().Kind != token.DECLARE {
			return out
		}
		start := p.peek().Pos
		p.next()
		g := &ast.Global{NodeContext: ast.NodeContext{Pos: start, File: p.filename}}
		if p.match(token.CONST) {
			g.Const = true
		}
		g.Name, _ = p.expectIdent()
		if p.match(token.COLON) {
			g.Type = p.parseType()
		}
		if p.match(token.ASSIGN) {
			g.Init = p.parseExpr(LOWEST)
		}
		out = append(out, g)
	}
}

// parseFunction uses the flexible-section model: the body contains named
// sub-sections params/returns/body in any order, each parsed at most once,
// terminated by `end function`.
func (p *Parser) parseFunction() *ast.Function {
	start := p.peek().Pos
	p.next() // 'function'
	p.expect(token.COLON)
	name, _ := p.expectIdent()
	fn := &ast.Function{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Name: name}

	var sawParams, sawReturns, sawBody bool
	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.END:
			p.next()
			p.expect(token.FUNCTION)
			return fn
		case token.PARAMS:
			if !sawParams {
				fn.Params = p.parseParamsSection()
				sawParams = true
			} else {
				p.unexpected()
				p.syncToNewlineOrTopLevel()
			}
		case token.RETURNS:
			if !sawReturns {
				p.next()
				p.expect(token.COLON)
				fn.ReturnType = p.parseType()
				sawReturns = true
			} else {
				p.unexpected()
				p.syncToNewlineOrTopLevel()
			}
		case token.BODY:
			if !sawBody {
				fn.Body = p.parseBodySection()
				sawBody = true
			} else {
				p.unexpected()
				p.syncToNewlineOrTopLevel()
			}
		case token.EOF:
			p.errorf(MissingToken, p.peek().Pos, "end function", "")
			return fn
		default:
			p.unexpected()
			p.syncToNewlineOrTopLevel()
		}
	}
}

func (p *Parser) parseParamsSection() []ast.Param {
	p.next() // 'params'
	p.expect(token.COLON)
	var out []ast.Param
	for {
		p.skipBlank()
		if p.peek().Kind != token.IDENT {
			return out
		}
		name, _ := p.expectIdent()
		p.expect(token.COLON)
		typ := p.parseType()
		out = append(out, ast.Param{Name: name, Type: typ})
		if !p.match(token.COMMA) {
			p.skipBlank()
			if p.peek().Kind != token.IDENT {
				return out
			}
		}
	}
}

func (p *Parser) parseBodySection() []ast.Stmt {
	p.next() // 'body'
	p.expect(token.COLON)
	var stmts []ast.Stmt
	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.END:
			if p.peekAt(1).Kind == token.BODY {
				p.next() // 'end'
				p.next() // 'body'
			}
			return stmts
		case token.PARAMS, token.RETURNS, token.EOF:
			return stmts
		default:
			s := p.parseStatement()
			if s != nil {
				stmts = append(stmts, s)
			}
		}
	}
}

// parseStruct parses `struct: Name [extends Parent] field* [init] method*
// end struct`.
func (p *Parser) parseStruct() *ast.Struct {
	start := p.peek().Pos
	p.next() // 'struct'
	p.expect(token.COLON)
	name, _ := p.expectIdent()
	st := &ast.Struct{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Name: name}

	if p.match(token.EXTENDS) {
		st.Parent, _ = p.expectIdent()
	}

	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.END:
			p.next()
			p.expect(token.STRUCT)
			return st
		case token.DECLARE:
			st.Fields = append(st.Fields, p.parseStructField())
		case token.INIT:
			st.Init = p.parseMethodLike("init")
		case token.METHOD:
			st.Methods = append(st.Methods, p.parseMethodLike(""))
		case token.EOF:
			p.errorf(MissingToken, p.peek().Pos, "end struct", "")
			return st
		default:
			p.unexpected()
			p.syncToNewlineOrTopLevel()
		}
	}
}

func (p *Parser) parseStructField() ast.Field {
	p.next() // 'declare'
	name, _ := p.expectIdent()
	p.expect(token.COLON)
	typ := p.parseType()
	return ast.Field{Name: name, Type: typ}
}

// parseMethodLike parses an `init`/`method` sub-section, which shares the
// flexible params/returns/body structure of a top-level function.
func (p *Parser) parseMethodLike(forcedName string) *ast.Function {
	start := p.peek().Pos
	kw := p.next().Kind // 'init' or 'method'
	name := forcedName
	if kw == token.METHOD {
		name, _ = p.expectIdent()
	}
	fn := &ast.Function{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Name: name}

	var sawParams, sawReturns, sawBody bool
	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.END:
			p.next()
			if kw == token.METHOD {
				p.expect(token.METHOD)
			} else {
				p.expect(token.INIT)
			}
			return fn
		case token.PARAMS:
			if !sawParams {
				fn.Params = p.parseParamsSection()
				sawParams = true
			}
		case token.RETURNS:
			if !sawReturns {
				p.next()
				p.expect(token.COLON)
				fn.ReturnType = p.parseType()
				sawReturns = true
			}
		case token.BODY:
			if !sawBody {
				fn.Body = p.parseBodySection()
				sawBody = true
			}
		case token.EOF:
			p.errorf(MissingToken, p.peek().Pos, "end", "")
			return fn
		default:
			p.unexpected()
			p.syncToNewlineOrTopLevel()
		}
	}
}
