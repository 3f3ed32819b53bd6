package scanner

import "github.com/jcnc-org/Snow-sub005/lang/token"

func (s *Scanner) atNumber(_ *Scanner) bool {
	return isDigit(s.cur) || (s.cur == '.' && isDigit(rune(s.peek())))
}

// scanNumber consumes a numeric lexeme: decimal digits with optional
// fractional part and exponent, optional single-letter suffix b|s|l|f
// (case-insensitive), underscores permitted as digit separators, or a
// 0x/0X-prefixed hex literal whose trailing alphabetic character is a
// suffix only if it isn't itself a valid hex digit. Final typed conversion
// (applying the suffix, stripping underscores, choosing int vs double) is
// done later by lang/ir's literal parser; the scanner's job is only to
// delimit the lexeme and flag malformed shapes.
func (s *Scanner) scanNumber(_ *Scanner, pos token.Pos) token.Token {
	start := s.off
	line, col := pos.LineCol()

	isHex := false
	if s.cur == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		isHex = true
		s.advance()
		s.advance()
		hexStart := s.off
		for isHexDigit(s.cur) || s.cur == '_' {
			s.advance()
		}
		if s.off == hexStart {
			s.error(line, col, "malformed hex literal: no digits after 0x")
		}
	} else {
		for isDigit(s.cur) || s.cur == '_' {
			s.advance()
		}
		if s.cur == '.' {
			s.advance()
			for isDigit(s.cur) || s.cur == '_' {
				s.advance()
			}
		}
		if (s.cur == 'e' || s.cur == 'E') && exponentFollows(s.peek()) {
			s.advance()
			if s.cur == '+' || s.cur == '-' {
				s.advance()
			}
			for isDigit(s.cur) {
				s.advance()
			}
		}
	}

	var suffix byte
	if isHex {
		// A trailing alphabetic char is a suffix only if it is not itself a
		// valid hex digit.
		if isSuffixLetter(byte(s.cur)) && !isHexDigit(s.cur) {
			suffix = byte(toLowerASCII(byte(s.cur)))
			s.advance()
		}
	} else if isSuffixLetter(byte(s.cur)) {
		suffix = toLowerASCII(byte(s.cur))
		s.advance()
	}

	raw := string(s.src[start:s.off])
	tok := token.Token{Kind: token.NUMBER, Lexeme: raw, Raw: raw, Pos: pos, Suffix: suffix}
	return tok
}

// exponentFollows reports whether the byte after 'e'/'E' starts a legal
// exponent (an optional sign then a digit), using single-byte lookahead
// only so the scanner never needs to backtrack.
func exponentFollows(next byte) bool {
	return next >= '0' && next <= '9' || next == '+' || next == '-'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isSuffixLetter(b byte) bool {
	switch b {
	case 'b', 'B', 's', 'S', 'l', 'L', 'f', 'F':
		return true
	}
	return false
}

func toLowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
