package parser

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// parseStatement dispatches on the leading keyword, falling through to
// ExpressionStatement (which detects `target = value` assignment forms by
// lookahead).
func (p *Parser) parseStatement() ast.Stmt {
	p.skipBlank()
	var s ast.Stmt
	switch p.peek().Kind {
	case token.DECLARE:
		s = p.parseDeclaration()
	case token.IF:
		s = p.parseIf()
	case token.LOOP:
		s = p.parseLoop()
	case token.RETURN:
		s = p.parseReturn()
	case token.BREAK:
		pos := p.next().Pos
		s = &ast.Break{NodeContext: ast.NodeContext{Pos: pos, File: p.filename}}
	case token.CONTINUE:
		pos := p.next().Pos
		s = &ast.Continue{NodeContext: ast.NodeContext{Pos: pos, File: p.filename}}
	case token.END, token.EOF:
		return nil
	default:
		s = p.parseExpressionStatement()
	}
	// a statement ends at a newline; skip it (and any blank lines) but do
	// not consume the start of the next real construct.
	for p.peek().Kind == token.NEWLINE || p.peek().Kind == token.COMMENT {
		p.next()
	}
	return s
}

func (p *Parser) parseDeclaration() ast.Stmt {
	start := p.peek().Pos
	p.next() // 'declare'
	d := &ast.Declaration{NodeContext: ast.NodeContext{Pos: start, File: p.filename}}
	if p.match(token.CONST) {
		d.Const = true
	}
	d.Name, _ = p.expectIdent()
	if p.match(token.COLON) {
		d.Type = p.parseType()
	}
	if p.match(token.ASSIGN) {
		d.Init = p.parseExpr(LOWEST)
	}
	return d
}

// parseExpressionStatement parses an expression, then checks for a
// top-level `=` to rewrite it into an Assignment or IndexAssignment.
func (p *Parser) parseExpressionStatement() ast.Stmt {
	start := p.peek().Pos
	e := p.parseExpr(LOWEST)
	if p.peek().Kind == token.ASSIGN {
		p.next()
		value := p.parseExpr(LOWEST)
		if idx, ok := e.(*ast.Index); ok {
			return &ast.IndexAssignment{
				NodeContext: ast.NodeContext{Pos: start, File: p.filename},
				Array:       idx.Array, Idx: idx.Idx, Value: value,
			}
		}
		return &ast.Assignment{
			NodeContext: ast.NodeContext{Pos: start, File: p.filename},
			Target:      e, Value: value,
		}
	}
	return &ast.ExpressionStmt{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Expr: e}
}

// parseIf parses `if cond then ... [else ...] end`.
func (p *Parser) parseIf() ast.Stmt {
	start := p.peek().Pos
	p.next() // 'if'
	cond := p.parseExpr(LOWEST)
	p.expect(token.THEN)
	n := &ast.If{NodeContext: ast.NodeContext{Pos: start, File: p.filename}, Cond: cond}

	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.ELSE:
			p.next()
			for {
				p.skipBlank()
				if p.peek().Kind == token.END {
					p.next()
					p.expect(token.IF)
					return n
				}
				if p.peek().Kind == token.EOF {
					p.errorf(MissingToken, p.peek().Pos, "end if", "")
					return n
				}
				s := p.parseStatement()
				if s != nil {
					n.Else = append(n.Else, s)
				}
			}
		case token.END:
			p.next()
			p.expect(token.IF)
			return n
		case token.EOF:
			p.errorf(MissingToken, p.peek().Pos, "end if", "")
			return n
		default:
			s := p.parseStatement()
			if s != nil {
				n.Then = append(n.Then, s)
			}
		}
	}
}

// parseLoop parses `loop init: ... cond: ... step: ... body: ... end loop`,
// a flexible-section block lowering to a C-style `for(init; cond; step)
// body`; each clause sub-section is optional except body.
func (p *Parser) parseLoop() ast.Stmt {
	start := p.peek().Pos
	p.next() // 'loop'
	n := &ast.Loop{NodeContext: ast.NodeContext{Pos: start, File: p.filename}}

	var sawBody bool
	for {
		p.skipBlank()
		switch p.peek().Kind {
		case token.END:
			p.next()
			p.expect(token.LOOP)
			return n
		case token.INIT:
			p.next()
			p.expect(token.COLON)
			n.Init = p.parseStatement()
		case token.COND:
			p.next()
			p.expect(token.COLON)
			n.Cond = p.parseExpr(LOWEST)
			p.skipBlank()
		case token.STEP:
			p.next()
			p.expect(token.COLON)
			n.Step = p.parseStatement()
		case token.BODY:
			if !sawBody {
				n.Body = p.parseBodySection()
				sawBody = true
			}
		case token.EOF:
			p.errorf(MissingToken, p.peek().Pos, "end loop", "")
			return n
		default:
			p.unexpected()
			p.syncToNewlineOrTopLevel()
		}
	}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.peek().Pos
	p.next() // 'return'
	n := &ast.Return{NodeContext: ast.NodeContext{Pos: start, File: p.filename}}
	switch p.peek().Kind {
	case token.NEWLINE, token.END, token.EOF, token.COMMENT:
		// bare return
	default:
		n.Value = p.parseExpr(LOWEST)
	}
	return n
}
