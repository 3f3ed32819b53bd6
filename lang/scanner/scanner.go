// Package scanner tokenizes Snow source text into a token stream for the
// parser, collecting lexical diagnostics instead of aborting on the first
// bad lexeme.
package scanner

import (
	"unicode"
	"unicode/utf8"

	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// subScanner is one entry in the scanner chain: match reports whether this
// sub-scanner should handle the character currently under the cursor, and
// consume performs the actual scan.
type subScanner struct {
	match   func(s *Scanner) bool
	consume func(s *Scanner, pos token.Pos) token.Token
}

// Scanner tokenizes a single source file. Zero value is not usable; call
// Init first.
type Scanner struct {
	filename string
	src      []byte
	errs     *token.ErrorList

	off  int  // byte offset of cur
	roff int  // byte offset just past cur
	cur  rune // current character, -1 at EOF

	line, col int // 1-based position of cur

	chain []subScanner
}

// Init prepares s to scan src as filename. Callers should normalize line
// endings first (ScanAll does this).
func (s *Scanner) Init(filename string, src []byte, errs *token.ErrorList) {
	s.filename = filename
	s.src = src
	s.errs = errs
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 1
	s.chain = []subScanner{
		{(*Scanner).atNewline, (*Scanner).scanNewline},
		{(*Scanner).atComment, (*Scanner).scanComment},
		{(*Scanner).atNumber, (*Scanner).scanNumber},
		{(*Scanner).atIdentStart, (*Scanner).scanIdent},
		{(*Scanner).atStringStart, (*Scanner).scanString},
		{(*Scanner).atOperatorStart, (*Scanner).scanOperator},
		{(*Scanner).atSymbolStart, (*Scanner).scanSymbol},
	}
	s.advance()
}

// ScanAll normalizes line endings, tokenizes src in full and returns the
// token list (always terminated by EOF) alongside any collected errors.
func ScanAll(filename string, src []byte) ([]token.Token, token.ErrorList) {
	src = normalizeNewlines(src)
	var errs token.ErrorList
	var s Scanner
	s.Init(filename, src, &errs)

	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	validateDeclareStatements(toks, &errs)
	errs.Sort()
	return toks, errs
}

func normalizeNewlines(src []byte) []byte {
	if !containsCR(src) {
		return src
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] == '\r' {
			out = append(out, '\n')
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			continue
		}
		out = append(out, src[i])
	}
	return out
}

func containsCR(src []byte) bool {
	for _, b := range src {
		if b == '\r' {
			return true
		}
	}
	return false
}

// Scan returns the next token, resynchronizing past bad lexemes internally.
func (s *Scanner) Scan() token.Token {
	s.skipSpaces()

	pos := token.MakePos(s.line, s.col)
	if s.cur == -1 {
		return token.Token{Kind: token.EOF, Pos: pos}
	}

	for _, ss := range s.chain {
		if ss.match(s) {
			return ss.consume(s, pos)
		}
	}
	return s.scanUnknown(pos)
}

// skipSpaces skips horizontal whitespace only; newlines are significant
// tokens (see atNewline/scanNewline).
func (s *Scanner) skipSpaces() {
	for s.cur == ' ' || s.cur == '\t' {
		s.advance()
	}
}

func (s *Scanner) atNewline(_ *Scanner) bool { return s.cur == '\n' }

func (s *Scanner) scanNewline(_ *Scanner, pos token.Pos) token.Token {
	for s.cur == '\n' {
		s.advance()
		s.skipSpaces()
	}
	return token.Token{Kind: token.NEWLINE, Lexeme: "\n", Raw: "\n", Pos: pos}
}

func (s *Scanner) atComment(_ *Scanner) bool {
	return s.cur == '/' && (s.peek() == '/' || s.peek() == '*')
}

func (s *Scanner) scanComment(_ *Scanner, pos token.Pos) token.Token {
	start := s.off
	line, col := pos.LineCol()
	nested := s.peek() == '*'
	s.advance() // consume '/'
	s.advance() // consume '/' or '*'
	if !nested {
		for s.cur != '\n' && s.cur != -1 {
			s.advance()
		}
	} else {
		depth := 1
		for depth > 0 {
			if s.cur == -1 {
				s.error(line, col, "unterminated block comment")
				break
			}
			if s.cur == '*' && s.peek() == '/' {
				depth--
				s.advance()
				s.advance()
				continue
			}
			s.advance()
		}
	}
	raw := string(s.src[start:s.off])
	return token.Token{Kind: token.COMMENT, Lexeme: raw, Raw: raw, Pos: pos}
}

// error records a diagnostic at the given line/col.
func (s *Scanner) error(line, col int, msg string) {
	s.errs.Add(token.Position{Filename: s.filename, Line: line, Column: col}, msg)
}

func (s *Scanner) errorf(line, col int, format string, args ...any) {
	s.errs.Addf(token.Position{Filename: s.filename, Line: line, Column: col}, format, args...)
}

// peek returns the byte following cur without advancing, or 0 at EOF.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 1
	} else if s.cur != 0 && s.cur != -1 {
		s.col++
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.line, s.col, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

// advanceIf consumes cur and returns true if it equals b.
func (s *Scanner) advanceIf(b byte) bool {
	if s.cur == rune(b) {
		s.advance()
		return true
	}
	return false
}

// scanUnknown always records a diagnostic and resynchronizes by skipping a
// maximal run of letter/digit/_/. characters.
func (s *Scanner) scanUnknown(pos token.Pos) token.Token {
	line, col := pos.LineCol()
	bad := s.cur
	s.errorf(line, col, "unexpected character %q", bad)
	start := s.off
	for isIdentRune(s.cur) || s.cur == '.' {
		s.advance()
	}
	if s.off == start {
		s.advance() // always make progress
	}
	raw := string(s.src[start:min(s.off, len(s.src))])
	return token.Token{Kind: token.ILLEGAL, Lexeme: raw, Raw: raw, Pos: pos}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentRune(r rune) bool { return isLetter(r) || isDigit(r) }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
