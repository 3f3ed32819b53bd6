package parser

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// Precedence is the Pratt-parser precedence ladder: call, index and member
// access all bind at CALL precedence so they bind tighter than any
// arithmetic operator.
type Precedence int

const (
	LOWEST Precedence = iota
	OR
	AND
	EQUALITY
	COMPARISON
	SUM
	PRODUCT
	UNARY
	CALL
)

var binPrecedence = map[token.Kind]Precedence{
	token.OR:      OR,
	token.AND:     AND,
	token.EQ:      EQUALITY,
	token.NEQ:     EQUALITY,
	token.GT:      COMPARISON,
	token.GE:      COMPARISON,
	token.LT:      COMPARISON,
	token.LE:      COMPARISON,
	token.PLUS:    SUM,
	token.MINUS:   SUM,
	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.PERCENT: PRODUCT,
	token.LPAREN:  CALL,
	token.LBRACK:  CALL,
	token.DOT:     CALL,
}

func (p *Parser) peekPrecedence() Precedence {
	if pr, ok := binPrecedence[p.peek().Kind]; ok {
		return pr
	}
	return LOWEST
}

// parseExpr is the Pratt parsing loop: parse a prefix expression, then
// repeatedly fold in infix operators whose precedence exceeds minPrec.
func (p *Parser) parseExpr(minPrec Precedence) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return left
	}
	for {
		p.skipComments()
		pr := p.peekPrecedence()
		if pr <= minPrec {
			return left
		}
		left = p.parseInfix(left, pr)
	}
}

func (p *Parser) parsePrefix() ast.Expr {
	p.skipComments()
	t := p.peek()
	pos := t.Pos
	ctx := ast.NodeContext{Pos: pos, File: p.filename}
	switch t.Kind {
	case token.IDENT:
		p.next()
		return &ast.Identifier{NodeContext: ctx, Name: t.Lexeme}
	case token.NUMBER:
		p.next()
		return &ast.NumberLiteral{NodeContext: ctx, Raw: t.Lexeme, Suffix: t.Suffix}
	case token.STRING:
		p.next()
		return &ast.StringLiteral{NodeContext: ctx, Value: t.Str}
	case token.BOOL:
		p.next()
		return &ast.BoolLiteral{NodeContext: ctx, Value: t.Bool}
	case token.LBRACK:
		return p.parseArrayLiteral(ctx)
	case token.LPAREN:
		p.next()
		e := p.parseExpr(LOWEST)
		p.expect(token.RPAREN)
		return e
	case token.MINUS, token.NOT:
		p.next()
		operand := p.parseExpr(UNARY)
		return &ast.Unary{NodeContext: ctx, Op: t.Kind, Operand: operand}
	case token.NEW:
		return p.parseNew(ctx)
	default:
		p.unexpected()
		p.next()
		return nil
	}
}

func (p *Parser) parseArrayLiteral(ctx ast.NodeContext) ast.Expr {
	p.next() // '['
	var elems []ast.Expr
	for p.peek().Kind != token.RBRACK && p.peek().Kind != token.EOF {
		elems = append(elems, p.parseExpr(LOWEST))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACK)
	return &ast.ArrayLiteral{NodeContext: ctx, Elems: elems}
}

func (p *Parser) parseNew(ctx ast.NodeContext) ast.Expr {
	p.next() // 'new'
	name, _ := p.expectIdent()
	n := &ast.New{NodeContext: ctx, TypeName: name}
	p.expect(token.LPAREN)
	for p.peek().Kind != token.RPAREN && p.peek().Kind != token.EOF {
		n.Args = append(n.Args, p.parseExpr(LOWEST))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return n
}

func (p *Parser) parseInfix(left ast.Expr, pr Precedence) ast.Expr {
	t := p.peek()
	ctx := ast.NodeContext{Pos: t.Pos, File: p.filename}
	switch t.Kind {
	case token.LPAREN:
		p.next()
		var args []ast.Expr
		for p.peek().Kind != token.RPAREN && p.peek().Kind != token.EOF {
			args = append(args, p.parseExpr(LOWEST))
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
		return &ast.Call{NodeContext: ctx, Callee: left, Args: args}
	case token.LBRACK:
		p.next()
		idx := p.parseExpr(LOWEST)
		p.expect(token.RBRACK)
		return &ast.Index{NodeContext: ctx, Array: left, Idx: idx}
	case token.DOT:
		p.next()
		name, _ := p.expectIdent()
		return &ast.Member{NodeContext: ctx, Object: left, Name: name}
	default:
		p.next()
		right := p.parseExpr(pr)
		return &ast.Binary{NodeContext: ctx, Op: t.Kind, LHS: left, RHS: right}
	}
}
