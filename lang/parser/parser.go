// Package parser implements the Snow parser: a Pratt expression parser plus
// statement/top-level factory dispatch, producing a typed AST.
package parser

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// Parser is the token stream facade: peek/next/match/expect over a flat
// token slice, transparently skipping comment tokens (redundant newlines
// are significant only at statement boundaries and are handled by
// individual parselets/statement parsers).
type Parser struct {
	filename string
	toks     []token.Token
	pos      int
	errs     []*Error
}

// ParseFile tokenizes-adjacent: given an already-scanned token stream and
// its source file name, returns the top-level AST nodes.
// Loose top-level statements are wrapped into a synthetic "_start" function
// so later stages always see a uniform list of ast.Function/ast.Module/
// ast.Struct/ast.Import nodes.
func ParseFile(filename string, toks []token.Token) ([]ast.TopLevel, []*Error) {
	p := &Parser{filename: filename, toks: toks}
	var top []ast.TopLevel
	var script []ast.Stmt

	for !p.atEOF() {
		p.skipBlank()
		if p.atEOF() {
			break
		}
		switch p.peek().Kind {
		case token.MODULE:
			top = append(top, p.parseModule())
		case token.FUNCTION:
			top = append(top, p.parseFunction())
		case token.STRUCT:
			top = append(top, p.parseStruct())
		case token.IMPORT:
			top = append(top, p.parseImport())
		default:
			s := p.parseStatement()
			if s != nil {
				script = append(script, s)
			}
		}
	}

	if len(script) > 0 {
		top = append(top, &ast.Function{
			NodeContext: ast.NodeContext{File: filename},
			Name:        "_start",
			Body:        script,
		})
	}
	return top, p.errs
}

func (p *Parser) atEOF() bool { return p.pos >= len(p.toks) || p.toks[p.pos].Kind == token.EOF }

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// skipBlank skips over comment and newline tokens, which callers that don't
// care about statement separation may freely ignore.
func (p *Parser) skipBlank() {
	for p.peek().Kind == token.COMMENT || p.peek().Kind == token.NEWLINE {
		p.next()
	}
}

// skipComments skips only comments, preserving newlines as statement
// separators.
func (p *Parser) skipComments() {
	for p.peek().Kind == token.COMMENT {
		p.next()
	}
}

func (p *Parser) match(k token.Kind) bool {
	p.skipComments()
	if p.peek().Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	p.skipComments()
	if p.peek().Kind != k {
		p.errorf(MissingToken, p.peek().Pos, k.String(), "")
		return token.Token{}, false
	}
	return p.next(), true
}

func (p *Parser) expectIdent() (string, bool) {
	t, ok := p.expect(token.IDENT)
	return t.Lexeme, ok
}

func (p *Parser) errorf(kind ErrorKind, pos token.Pos, expected, found string) {
	e := &Error{Kind: kind, Filename: p.filename, Pos: pos}
	switch kind {
	case MissingToken:
		e.Expected = expected
	case UnexpectedToken:
		e.Found = found
	case UnsupportedFeature:
		e.Feature = expected
	}
	p.errs = append(p.errs, e)
}

func (p *Parser) unexpected() {
	t := p.peek()
	p.errorf(UnexpectedToken, t.Pos, "", tokenDesc(t))
}

func tokenDesc(t token.Token) string {
	if t.Lexeme != "" {
		return t.Lexeme
	}
	return t.Kind.String()
}

// syncToNewlineOrTopLevel discards tokens until the next newline or a
// recognized top-level keyword, so one syntax error doesn't cascade into
// spurious follow-on errors over the rest of the file.
func (p *Parser) syncToNewlineOrTopLevel() {
	for !p.atEOF() {
		switch p.peek().Kind {
		case token.NEWLINE, token.MODULE, token.FUNCTION, token.STRUCT, token.IMPORT:
			return
		}
		p.next()
	}
}

// syncToEndOf discards tokens until `end <kind>` or EOF, used to recover
// from a broken top-level construct.
func (p *Parser) syncToEndOf(kind token.Kind) {
	for !p.atEOF() {
		if p.peek().Kind == token.END && p.peekAt(1).Kind == kind {
			p.next()
			p.next()
			return
		}
		p.next()
	}
}
